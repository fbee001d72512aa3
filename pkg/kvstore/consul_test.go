package kvstore

import (
	"fmt"
	"os"
	"testing"
	"time"
)

func TestConsulStore_Contract(t *testing.T) {
	addr := os.Getenv("KVSTREAM_TEST_CONSUL")
	if addr == "" {
		t.Skip("KVSTREAM_TEST_CONSUL not set, skipping consul integration test")
	}

	folder := fmt.Sprintf("kvstream-test-%d", time.Now().UnixNano())
	store, err := NewConsulStore(ConsulOptions{Address: addr, Folder: folder})
	if err != nil {
		t.Skipf("Consul not available: %v", err)
	}
	defer func() {
		_, _ = store.c.DeleteTree(folder, nil)
	}()

	testStoreContract(t, store)
}

package kvstore

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Contract(t *testing.T) {
	dsn := os.Getenv("KVSTREAM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KVSTREAM_TEST_POSTGRES_DSN not set, skipping postgres integration test")
	}

	table := fmt.Sprintf("kv_streams_test_%d", time.Now().UnixNano())
	store, err := NewPostgresStore(dsn, table)
	require.NoError(t, err)
	defer func() {
		_ = store.db.Migrator().DropTable(table)
		_ = store.Close()
	}()

	testStoreContract(t, store)

	info, err := store.Info()
	require.NoError(t, err)
	e, ok := info.Entry("contract/a/b.txt")
	require.True(t, ok)
	assert.Equal(t, int64(5), e.Size)
	assert.False(t, e.ModifiedAt.IsZero())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "plain/key", escapeLike("plain/key"))
}

package stream

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const lockStripes = 256

// keyLocks serializes writers per key. Distinct keys may share a stripe.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{}
}

func (l *keyLocks) lock(key string) func() {
	m := &l.stripes[xxhash.Sum64String(key)%lockStripes]
	m.Lock()
	return m.Unlock
}

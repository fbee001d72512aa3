package kvstore

import (
	"errors"

	"github.com/fystack/kvstream/pkg/infra"
)

var (
	ErrKeyNotFound   = infra.ErrKeyNotFound
	ErrKeyEmpty      = infra.ErrKeyEmpty
	ErrCacheRejected = errors.New("cache rejected value")
	ErrClosed        = errors.New("store is closed")
)

// checkKey returns ErrKeyEmpty if k == ""
func checkKey(k string) error {
	if k == "" {
		return ErrKeyEmpty
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package enum

type KVStoreType string
type MissingKeyPolicy string
type CodecType string

const (
	KVStoreTypeMemory   KVStoreType = "memory"
	KVStoreTypeCache    KVStoreType = "cache"
	KVStoreTypeBadger   KVStoreType = "badger"
	KVStoreTypeRedis    KVStoreType = "redis"
	KVStoreTypeConsul   KVStoreType = "consul"
	KVStoreTypePostgres KVStoreType = "postgres"
)

// MissingKeyPolicy decides what a read sees for a key that was never written.
const (
	MissingKeyEmpty MissingKeyPolicy = "empty"
	MissingKeyError MissingKeyPolicy = "error"
)

const (
	CodecGob  CodecType = "gob"
	CodecJSON CodecType = "json"
	CodecRaw  CodecType = "raw"
)

// DefaultMissingKeyPolicy returns the policy a store type uses when the
// configuration leaves it unset. Caches hand out empty
// values; everything else reports the missing key.
func DefaultMissingKeyPolicy(t KVStoreType) MissingKeyPolicy {
	if t == KVStoreTypeCache {
		return MissingKeyEmpty
	}
	return MissingKeyError
}

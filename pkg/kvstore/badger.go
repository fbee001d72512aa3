package kvstore

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/stringutils"
	"github.com/fystack/kvstream/pkg/infra"
)

type BadgerOptions struct {
	Directory string
	Prefix    string
	// InMemory keeps everything in RAM; Directory is ignored.
	InMemory bool
}

type BadgerStore struct {
	db     *badger.DB
	prefix string
	start  time.Time
}

func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(opts.Directory).WithLogger(nil)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db:     db,
		prefix: opts.Prefix,
		start:  time.Now(),
	}, nil
}

func (b *BadgerStore) fullKey(k string) ([]byte, error) {
	if err := checkKey(k); err != nil {
		return nil, err
	}
	return []byte(stringutils.JoinKey(b.prefix, k)), nil
}

func (b *BadgerStore) GetName() string {
	return string(enum.KVStoreTypeBadger)
}

func (b *BadgerStore) Get(key string) ([]byte, error) {
	k, err := b.fullKey(key)
	if err != nil {
		return nil, err
	}

	var valCopy []byte
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	return valCopy, err
}

func (b *BadgerStore) Set(key string, value []byte) error {
	k, err := b.fullKey(key)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, cloneBytes(value))
	})
}

func (b *BadgerStore) List(prefix string) ([]*infra.KVPair, error) {
	searchPrefix := []byte(prefix)
	if b.prefix != "" {
		searchPrefix = []byte(stringutils.JoinKey(b.prefix, prefix))
	}

	result := make([]*infra.KVPair, 0)
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(searchPrefix); it.ValidForPrefix(searchPrefix); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result = append(result, &infra.KVPair{
				Key:   stringutils.TrimKey(b.prefix, string(item.KeyCopy(nil))),
				Value: v,
			})
		}
		return nil
	})
	return result, err
}

// Info walks the keyspace without fetching values. Badger keeps no access
// times, so only sizes are reported.
func (b *BadgerStore) Info() (*infra.StoreInfo, error) {
	info := &infra.StoreInfo{
		Name:      b.GetName(),
		StartTime: b.start,
		Entries:   make([]infra.EntryInfo, 0),
	}
	searchPrefix := []byte{}
	if b.prefix != "" {
		searchPrefix = []byte(stringutils.JoinKey(b.prefix, ""))
	}

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(searchPrefix); it.ValidForPrefix(searchPrefix); it.Next() {
			item := it.Item()
			info.Entries = append(info.Entries, infra.EntryInfo{
				Key:  stringutils.TrimKey(b.prefix, string(item.KeyCopy(nil))),
				Size: item.ValueSize(),
			})
		}
		return nil
	})
	return info, err
}

func (b *BadgerStore) Delete(key string) error {
	k, err := b.fullKey(key)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

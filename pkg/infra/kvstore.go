package infra

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fystack/kvstream/pkg/common/enum"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyEmpty    = errors.New("key is empty")
)

// KVStore is an interface for key-value stores holding whole opaque values.
// There are multiple implementations available like memory, ristretto, Consul, Postgres, Redis, BadgerDB.
// Set always replaces the entire value; there is no range write.

type KVPair struct {
	Key   string
	Value []byte
}

type KVStore interface {
	GetName() string
	// Get returns ErrKeyNotFound when nothing is stored under k.
	Get(k string) ([]byte, error)
	Set(k string, v []byte) error
	// Delete of a missing key is not an error.
	Delete(k string) error
	// List returns every pair whose key starts with prefix; "" lists all.
	List(prefix string) ([]*KVPair, error)
	Close() error
}

// Inspector is implemented by stores that can report per-entry metadata.
type Inspector interface {
	Info() (*StoreInfo, error)
}

type StoreInfo struct {
	Name      string
	StartTime time.Time
	Entries   []EntryInfo
	Hits      uint64
	Misses    uint64
}

type EntryInfo struct {
	Key        string
	Size       int64
	Hits       uint64
	CreatedAt  time.Time
	ModifiedAt time.Time
	AccessedAt time.Time
}

// TotalSize sums the size of all entries.
func (i *StoreInfo) TotalSize() int64 {
	var total int64
	for _, e := range i.Entries {
		total += e.Size
	}
	return total
}

// Entry finds the metadata for key.
func (i *StoreInfo) Entry(key string) (EntryInfo, bool) {
	for _, e := range i.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return EntryInfo{}, false
}

// Codec encodes/decodes Go values to/from slices of bytes.
type Codec interface {
	// Marshal encodes a Go value to a slice of bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes a slice of bytes into a Go value.
	Unmarshal(data []byte, v any) error
}

// Convenience variables
var (
	// JSON is a JSONcodec that encodes/decodes Go values to/from JSON.
	JSON = JSONcodec{}
	// Gob is a GobCodec that encodes/decodes Go values to/from gob.
	Gob = GobCodec{}
	// Raw passes byte slices through untouched.
	Raw = RawCodec{}
)

// CodecFor returns the codec registered under t, defaulting to gob.
func CodecFor(t enum.CodecType) Codec {
	switch t {
	case enum.CodecJSON:
		return JSON
	case enum.CodecRaw:
		return Raw
	default:
		return Gob
	}
}

// JSONcodec encodes/decodes Go values to/from JSON.
type JSONcodec struct{}

// Marshal encodes a Go value to JSON.
func (c JSONcodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a JSON value into a Go value.
func (c JSONcodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// GobCodec encodes/decodes Go values to/from gob.
type GobCodec struct{}

// Marshal encodes a Go value to gob.
func (c GobCodec) Marshal(v any) ([]byte, error) {
	buffer := new(bytes.Buffer)
	encoder := gob.NewEncoder(buffer)
	err := encoder.Encode(v)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Unmarshal decodes a gob value into a Go value.
func (c GobCodec) Unmarshal(data []byte, v any) error {
	reader := bytes.NewReader(data)
	decoder := gob.NewDecoder(reader)
	return decoder.Decode(v)
}

// RawCodec only accepts []byte and *[]byte.
type RawCodec struct{}

func (c RawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("raw codec: cannot marshal %T", v)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (c RawCodec) Unmarshal(data []byte, v any) error {
	p, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw codec: cannot unmarshal into %T", v)
	}
	*p = append((*p)[:0], data...)
	return nil
}

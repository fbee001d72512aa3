package kvstore

// This is a modified version of :https://github.com/philippgille/gokv/consul
// storing opaque byte values and listing by prefix.

import (
	"fmt"
	"time"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/stringutils"
	"github.com/fystack/kvstream/pkg/infra"
	"github.com/hashicorp/consul/api"
)

// ConsulStore implement infra.KVStore
type ConsulStore struct {
	c      *api.KV
	folder string
}

func (c ConsulStore) GetName() string {
	return string(enum.KVStoreTypeConsul)
}

// Set stores the given value for the given key.
func (c ConsulStore) Set(k string, v []byte) error {
	if err := checkKey(k); err != nil {
		return err
	}

	kvPair := api.KVPair{
		Key:   stringutils.JoinKey(c.folder, k),
		Value: cloneBytes(v),
	}
	_, err := c.c.Put(&kvPair, nil)
	return err
}

// Get retrieves the stored value for the given key.
func (c ConsulStore) Get(k string) ([]byte, error) {
	if err := checkKey(k); err != nil {
		return nil, err
	}

	kvPair, _, err := c.c.Get(stringutils.JoinKey(c.folder, k), nil)
	if err != nil {
		return nil, err
	}
	// If no value was found return ErrKeyNotFound
	if kvPair == nil {
		return nil, ErrKeyNotFound
	}
	return kvPair.Value, nil
}

func (c ConsulStore) List(prefix string) ([]*infra.KVPair, error) {
	kvPairs, _, err := c.c.List(stringutils.JoinKey(c.folder, prefix), nil)
	if err != nil {
		return nil, err
	}

	result := make([]*infra.KVPair, len(kvPairs))
	for i, kvPair := range kvPairs {
		result[i] = &infra.KVPair{
			Key:   stringutils.TrimKey(c.folder, kvPair.Key),
			Value: kvPair.Value,
		}
	}

	return result, nil
}

// Delete deletes the stored value for the given key.
// Deleting a non-existing key-value pair does NOT lead to an error.
func (c ConsulStore) Delete(k string) error {
	if err := checkKey(k); err != nil {
		return err
	}

	_, err := c.c.Delete(stringutils.JoinKey(c.folder, k), nil)
	return err
}

// Close closes the client.
// In the Consul implementation this doesn't have any effect.
func (c ConsulStore) Close() error {
	return nil
}

// ConsulOptions are the options for the Consul client.
type ConsulOptions struct {
	// URI scheme for the Consul server.
	// Optional ("http" by default).
	Scheme string
	// Address of the Consul server, including port number.
	// Optional ("127.0.0.1:8500" by default).
	Address string
	// Directory under which to store the key-value pairs.
	// The Consul UI calls this "folder".
	// Optional (none by default).
	Folder string

	// Client token
	Token    string
	HttpAuth *api.HttpBasicAuth
}

// DefaultConsulOptions is an Options object with default values.
// Scheme: "http", Address: "127.0.0.1:8500", Folder: none
var DefaultConsulOptions = ConsulOptions{
	Scheme:  "http",
	Address: "127.0.0.1:8500",
}

// NewConsulStore creates a new Consul client and pings the leader.
func NewConsulStore(options ConsulOptions) (*ConsulStore, error) {
	// Set default values
	if options.Scheme == "" {
		options.Scheme = DefaultConsulOptions.Scheme
	}
	if options.Address == "" {
		options.Address = DefaultConsulOptions.Address
	}

	config := api.DefaultConfig()
	config.Scheme = options.Scheme
	config.Address = options.Address
	// Add connection timeout
	config.WaitTime = 10 * time.Second
	if options.Token != "" {
		config.Token = options.Token
	}
	if options.HttpAuth != nil && options.HttpAuth.Username != "" {
		config.HttpAuth = options.HttpAuth
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	// Ping the Consul server to verify connectivity
	if _, err = client.Status().Leader(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul: %w", err)
	}

	return &ConsulStore{
		c:      client.KV(),
		folder: options.Folder,
	}, nil
}

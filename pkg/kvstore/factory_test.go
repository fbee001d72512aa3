package kvstore

import (
	"testing"

	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.SchemeConfig
		want string
	}{
		{"memory", config.SchemeConfig{Type: enum.KVStoreTypeMemory}, "memory"},
		{"cache", config.SchemeConfig{Type: enum.KVStoreTypeCache, Cache: config.CacheConfig{Codec: enum.CodecJSON}}, "cache"},
		{"badger", config.SchemeConfig{Type: enum.KVStoreTypeBadger, Badger: config.BadgerConfig{Directory: t.TempDir()}}, "badger"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := NewFromConfig(tc.cfg, config.ConnectConfig{})
			require.NoError(t, err)
			defer store.Close()
			assert.Equal(t, tc.want, store.GetName())
		})
	}
}

func TestNewFromConfig_Unsupported(t *testing.T) {
	_, err := NewFromConfig(config.SchemeConfig{Type: "etcd"}, config.ConnectConfig{})
	assert.Error(t, err)
}

package config

import (
	"fmt"
	"sort"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/stringutils"
	"github.com/goccy/go-yaml"
	"github.com/imdario/mergo"
	"github.com/samber/lo"
)

type SchemesConfig struct {
	Defaults SchemeConfig            `yaml:"defaults" validate:"-"`
	Items    map[string]SchemeConfig `yaml:",inline" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

// UnmarshalYAML splits out "defaults" from inline scheme entries
func (s *SchemesConfig) UnmarshalYAML(b []byte) error {
	var raw map[string]SchemeConfig
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		raw = map[string]SchemeConfig{}
	}
	if def, ok := raw["defaults"]; ok {
		s.Defaults = def
		delete(raw, "defaults")
	} else {
		s.Defaults = SchemeConfig{}
	}
	s.Items = raw
	return nil
}

// ApplyDefaults fills unset scheme fields from the defaults block, then from
// the per-type fallbacks.
func (s *SchemesConfig) ApplyDefaults() error {
	for name, sc := range s.Items {
		if err := mergo.Merge(&sc, s.Defaults); err != nil {
			return fmt.Errorf("scheme %s: merge defaults: %w", name, err)
		}
		if sc.MissingKey == "" {
			sc.MissingKey = enum.DefaultMissingKeyPolicy(sc.Type)
		}
		if sc.Type == enum.KVStoreTypeCache && sc.Cache.Codec == "" {
			sc.Cache.Codec = enum.CodecGob
		}
		if sc.Type == enum.KVStoreTypePostgres && sc.Postgres.Table == "" {
			sc.Postgres.Table = "kv_streams"
		}
		sc.Badger.Directory = stringutils.ExpandTildePath(sc.Badger.Directory)
		s.Items[name] = sc
	}
	return nil
}

// Names returns the configured scheme names in sorted order.
func (s *SchemesConfig) Names() []string {
	names := lo.Keys(s.Items)
	sort.Strings(names)
	return names
}

func (s *SchemesConfig) Get(name string) (SchemeConfig, error) {
	sc, ok := s.Items[name]
	if !ok {
		return SchemeConfig{}, fmt.Errorf("scheme %s not found", name)
	}
	return sc, nil
}

// backend returns the sub-config that must validate for the scheme's type.
func (sc SchemeConfig) backend() any {
	switch sc.Type {
	case enum.KVStoreTypeCache:
		return sc.Cache
	case enum.KVStoreTypeBadger:
		return sc.Badger
	case enum.KVStoreTypeRedis:
		return sc.Redis
	case enum.KVStoreTypeConsul:
		return sc.Consul
	case enum.KVStoreTypePostgres:
		return sc.Postgres
	default:
		return nil
	}
}

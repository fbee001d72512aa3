package config

import (
	"time"

	"github.com/fystack/kvstream/pkg/common/enum"
)

type Config struct {
	Environment   string        `yaml:"environment" validate:"required,oneof=production development"`
	LogLevel      string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	DefaultScheme string        `yaml:"default_scheme" validate:"required"`
	Schemes       SchemesConfig `yaml:"schemes" validate:"required"`
	Nats          NatsConfig    `yaml:"nats"`
	Connect       ConnectConfig `yaml:"connect"`
}

type SchemeConfig struct {
	Type       enum.KVStoreType      `yaml:"type" validate:"required,oneof=memory cache badger redis consul postgres"`
	MissingKey enum.MissingKeyPolicy `yaml:"missing_key" validate:"omitempty,oneof=empty error"`
	LockWrites bool                  `yaml:"lock_writes"`
	Cache      CacheConfig           `yaml:"cache" validate:"-"`
	Badger     BadgerConfig          `yaml:"badger" validate:"-"`
	Redis      RedisConfig           `yaml:"redis" validate:"-"`
	Consul     ConsulConfig          `yaml:"consul" validate:"-"`
	Postgres   PostgresConfig        `yaml:"postgres" validate:"-"`
}

type CacheConfig struct {
	MaxCost     int64          `yaml:"max_cost" validate:"gte=0"`
	NumCounters int64          `yaml:"num_counters" validate:"gte=0"`
	Codec       enum.CodecType `yaml:"codec" validate:"omitempty,oneof=gob json raw"`
}

type BadgerConfig struct {
	Directory string `yaml:"directory" validate:"required_unless=InMemory true"`
	Prefix    string `yaml:"prefix"`
	InMemory  bool   `yaml:"in_memory"`
}

type RedisConfig struct {
	URL      string `yaml:"url" validate:"required,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix"`
}

type ConsulConfig struct {
	Scheme   string         `yaml:"scheme" validate:"omitempty,oneof=http https"`
	Address  string         `yaml:"address"`
	Folder   string         `yaml:"folder"`
	Token    string         `yaml:"token"`
	HttpAuth HttpAuthConfig `yaml:"http_auth"`
}

type HttpAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type PostgresConfig struct {
	DSN   string `yaml:"dsn" validate:"required"`
	Table string `yaml:"table"`
}

type NatsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	TLS           NatsTLSConfig `yaml:"tls"`
}

type NatsTLSConfig struct {
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
	CACert     string `yaml:"ca_cert"`
}

// ConnectConfig bounds the retry loop used when dialing networked stores.
// A zero MaxElapsed dials once.
type ConnectConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxElapsed      time.Duration `yaml:"max_elapsed"`
}

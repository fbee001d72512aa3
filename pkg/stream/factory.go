package stream

import (
	"fmt"

	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/events"
	"github.com/fystack/kvstream/pkg/infra"
	"github.com/fystack/kvstream/pkg/kvstore"
	"github.com/fystack/kvstream/pkg/retry"
	"github.com/nats-io/nats.go"
)

// NewFromConfig builds a store per configured scheme and registers them on a
// new Wrapper. Write events go to NATS when enabled, unless opts carry their
// own emitter. Options are applied after the config defaults.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Wrapper, error) {
	w := NewWrapper(append([]Option{WithDefaultScheme(cfg.DefaultScheme)}, opts...)...)

	// a caller supplied emitter wins, so NATS is only dialed when it is used
	if cfg.Nats.Enabled && !w.customEmitter {
		conn, err := retry.Dial("nats", cfg.Connect, func() (*nats.Conn, error) {
			return infra.GetNATSConnection(cfg.Nats, cfg.Environment)
		})
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		w.emitter = events.NewNATSEmitter(conn, cfg.Nats.SubjectPrefix)
	}

	for _, name := range cfg.Schemes.Names() {
		sc, err := cfg.Schemes.Get(name)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		store, err := kvstore.NewFromConfig(sc, cfg.Connect)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("scheme %s: %w", name, err)
		}
		if err := w.Register(name, Binding{
			Store:      store,
			MissingKey: sc.MissingKey,
			LockWrites: sc.LockWrites,
		}); err != nil {
			_ = store.Close()
			_ = w.Close()
			return nil, err
		}
	}

	logger.Info("Stream wrapper ready",
		"schemes", w.Schemes(),
		"default", w.DefaultScheme(),
		"events", cfg.Nats.Enabled,
	)
	return w, nil
}

package retry

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/common/logger"
)

const DefaultInitialInterval = 500 * time.Millisecond

type Operation func() error

type ExponentialConfig struct {
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	OnRetry         func(error, time.Duration)
}

func Exponential(fn Operation, cfg ExponentialConfig) error {
	if cfg.InitialInterval <= 0 {
		return errors.New("initial interval must be > 0")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	if cfg.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = cfg.MaxElapsedTime
	}

	return backoff.RetryNotify(backoff.Operation(fn), bo, func(err error, next time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(err, next)
		}
	})
}

// Permanent marks err so Exponential stops retrying and returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Dial runs connect once when cfg.MaxElapsed is zero, otherwise retries it
// with exponential backoff until it succeeds or MaxElapsed passes.
func Dial[T any](name string, cfg config.ConnectConfig, connect func() (T, error)) (T, error) {
	if cfg.MaxElapsed <= 0 {
		return connect()
	}

	interval := cfg.InitialInterval
	if interval <= 0 {
		interval = DefaultInitialInterval
	}

	var out T
	err := Exponential(func() error {
		v, err := connect()
		if err != nil {
			return err
		}
		out = v
		return nil
	}, ExponentialConfig{
		InitialInterval: interval,
		MaxElapsedTime:  cfg.MaxElapsed,
		OnRetry: func(err error, next time.Duration) {
			logger.Warn("Connect failed, retrying", "target", name, "err", err, "next", next)
		},
	})
	return out, err
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fystack/kvstream/pkg/common/constant"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/ratelimiter"
	"github.com/fystack/kvstream/pkg/stream"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type result struct {
	total  int
	copied int
	bytes  int64
}

type migrator struct {
	wrapper *stream.Wrapper
	from    string
	to      string
	verify  bool
	dryRun  bool
	quiet   bool
	limiter *ratelimiter.RateLimiter
	workers int

	printMu sync.Mutex
}

// run copies every key under prefixes from the source scheme to the same key
// in the destination scheme.
func (m *migrator) run(ctx context.Context, prefixes []string) (result, error) {
	keys, size, err := m.scan(prefixes)
	if err != nil {
		return result{}, err
	}
	res := result{total: len(keys), bytes: size}
	if len(keys) == 0 || m.dryRun {
		if m.dryRun && !m.quiet {
			printDryRun(keys)
		}
		return res, nil
	}

	workers := m.workers
	if workers <= 0 {
		workers = 1
	}

	var (
		copied  atomic.Int64
		written atomic.Int64
		waitErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, key := range keys {
		if waitErr = m.limiter.Wait(gctx); waitErr != nil {
			break
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			n, err := m.copyKey(key)
			if err != nil {
				return err
			}
			written.Add(n)
			m.progress(int(copied.Add(1)), len(keys))
			return nil
		})
	}
	err = g.Wait()
	res.copied = int(copied.Load())
	res.bytes = written.Load()
	if !m.quiet {
		fmt.Println()
	}
	if err != nil {
		return res, err
	}
	return res, waitErr
}

func (m *migrator) progress(done, total int) {
	if m.quiet || (done%100 != 0 && done != total) {
		return
	}
	m.printMu.Lock()
	defer m.printMu.Unlock()
	printProgress(done, total)
}

// scan lists the source keys once, deduplicated across overlapping prefixes.
func (m *migrator) scan(prefixes []string) ([]string, int64, error) {
	src, err := m.wrapper.Store(m.from)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]bool)
	var size int64
	for _, prefix := range prefixes {
		pairs, err := src.List(prefix)
		if err != nil {
			return nil, 0, fmt.Errorf("list %q: %w", prefix, err)
		}
		if !m.quiet {
			printScan(prefix, len(pairs))
		}
		for _, p := range pairs {
			if !seen[p.Key] {
				seen[p.Key] = true
				size += int64(len(p.Value))
			}
		}
	}

	keys := lo.Keys(seen)
	sort.Strings(keys)
	return keys, size, nil
}

func (m *migrator) identifier(scheme, key string) string {
	return scheme + constant.SchemeSeparator + key
}

func (m *migrator) copyKey(key string) (int64, error) {
	data, err := m.readAll(m.from, key)
	if err != nil {
		return 0, err
	}

	// streams never truncate, so a longer old value would keep its tail
	store, err := m.wrapper.Store(m.to)
	if err != nil {
		return 0, err
	}
	if err := store.Delete(key); err != nil {
		return 0, fmt.Errorf("clear %s: %w", key, err)
	}

	dst, err := m.wrapper.Open(m.identifier(m.to, key), "w")
	if err != nil {
		return 0, err
	}
	defer dst.Close()
	if _, err := dst.Write(data); err != nil {
		return 0, err
	}

	if m.verify {
		got, err := m.readAll(m.to, key)
		if err != nil {
			return 0, fmt.Errorf("verify %s: %w", key, err)
		}
		if !bytes.Equal(got, data) {
			return 0, fmt.Errorf("verify %s: destination holds %d bytes, want %d", key, len(got), len(data))
		}
	}
	logger.Debug("Key copied", "key", key, "bytes", len(data))
	return int64(len(data)), nil
}

func (m *migrator) readAll(scheme, key string) ([]byte, error) {
	s, err := m.wrapper.Open(m.identifier(scheme, key), "r")
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return io.ReadAll(s)
}

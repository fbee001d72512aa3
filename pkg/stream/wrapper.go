package stream

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"sync"

	"github.com/fystack/kvstream/pkg/common/constant"
	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/events"
	"github.com/fystack/kvstream/pkg/infra"
	"github.com/samber/lo"
)

// Binding attaches a store to a scheme.
type Binding struct {
	Store infra.KVStore
	// MissingKey decides what Read does on an absent key. Empty picks the
	// default for the store type.
	MissingKey enum.MissingKeyPolicy
	// LockWrites serializes Write per key within this process.
	LockWrites bool
}

type binding struct {
	store        infra.KVStore
	missingKey   enum.MissingKeyPolicy
	locks        *keyLocks
	emitter      events.Emitter
	metrics      *Metrics
	maxValueSize int64
}

// DefaultMaxValueSize caps how large Write may grow a value.
const DefaultMaxValueSize int64 = 1 << 30

type Option func(*Wrapper)

func WithDefaultScheme(scheme string) Option {
	return func(w *Wrapper) { w.defaultScheme = scheme }
}

func WithEmitter(emitter events.Emitter) Option {
	return func(w *Wrapper) {
		if emitter != nil {
			w.emitter = emitter
			w.customEmitter = true
		}
	}
}

// WithMaxValueSize bounds the value size a Write may produce. Values that
// are not positive or do not fit in an int are clamped.
func WithMaxValueSize(n int64) Option {
	return func(w *Wrapper) {
		if n <= 0 {
			n = DefaultMaxValueSize
		}
		if uint64(n) > uint64(math.MaxInt) {
			n = int64(math.MaxInt)
		}
		w.maxValueSize = n
	}
}

func WithMetrics(m *Metrics) Option {
	return func(w *Wrapper) { w.metrics = m }
}

// Wrapper maps schemes to stores and opens streams on them.
type Wrapper struct {
	mu            sync.RWMutex
	defaultScheme string
	bindings      map[string]*binding
	emitter       events.Emitter
	customEmitter bool
	metrics       *Metrics
	maxValueSize  int64
}

func NewWrapper(opts ...Option) *Wrapper {
	w := &Wrapper{
		defaultScheme: constant.DefaultScheme,
		bindings:      make(map[string]*binding),
		emitter:       events.Noop(),
		maxValueSize:  DefaultMaxValueSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wrapper) DefaultScheme() string {
	return w.defaultScheme
}

func (w *Wrapper) Register(scheme string, b Binding) error {
	if !validScheme(scheme) {
		return fmt.Errorf("register %q: %w: bad scheme", scheme, ErrInvalidIdentifier)
	}
	if b.Store == nil {
		return fmt.Errorf("register %q: nil store", scheme)
	}

	policy := b.MissingKey
	if policy == "" {
		policy = enum.DefaultMissingKeyPolicy(enum.KVStoreType(b.Store.GetName()))
	}
	if policy != enum.MissingKeyEmpty && policy != enum.MissingKeyError {
		return fmt.Errorf("register %q: unknown missing key policy %q", scheme, policy)
	}

	bound := &binding{
		store:        b.Store,
		missingKey:   policy,
		emitter:      w.emitter,
		metrics:      w.metrics,
		maxValueSize: w.maxValueSize,
	}
	if b.LockWrites {
		bound.locks = newKeyLocks()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.bindings[scheme]; ok {
		return fmt.Errorf("register %q: %w", scheme, ErrSchemeExists)
	}
	w.bindings[scheme] = bound

	logger.Debug("Scheme registered",
		"scheme", scheme,
		"store", b.Store.GetName(),
		"missing_key", policy,
		"lock_writes", b.LockWrites,
	)
	return nil
}

// Unregister drops the scheme without closing its store. It reports
// whether the scheme was bound.
func (w *Wrapper) Unregister(scheme string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.bindings[scheme]
	delete(w.bindings, scheme)
	return ok
}

func (w *Wrapper) Schemes() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := lo.Keys(w.bindings)
	sort.Strings(names)
	return names
}

// Store returns the store bound to scheme.
func (w *Wrapper) Store(scheme string) (infra.KVStore, error) {
	b, err := w.lookup(scheme)
	if err != nil {
		return nil, err
	}
	return b.store, nil
}

func (w *Wrapper) lookup(scheme string) (*binding, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.bindings[scheme]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownScheme, scheme)
	}
	return b, nil
}

// Resolve parses identifier and fills in the default scheme.
func (w *Wrapper) Resolve(identifier string) (Identifier, error) {
	id, err := ParseIdentifier(identifier)
	if err != nil {
		return Identifier{}, err
	}
	if id.Scheme == "" {
		id.Scheme = w.defaultScheme
	}
	return id, nil
}

// Open binds a new stream to identifier. Nothing is read or written.
func (w *Wrapper) Open(identifier, mode string) (*Stream, error) {
	s, err := w.open(identifier, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", identifier, err)
	}
	return s, nil
}

func (w *Wrapper) open(identifier, mode string) (*Stream, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	id, err := w.Resolve(identifier)
	if err != nil {
		return nil, err
	}
	b, err := w.lookup(id.Scheme)
	w.metrics.observe(id.Scheme, opOpen, err)
	if err != nil {
		return nil, err
	}

	logger.Debug("Stream opened", "stream", id.String(), "mode", mode)
	return &Stream{id: id, mode: m, binding: b}, nil
}

// Stat describes the value behind identifier. Unlike Stream.Stat it fails
// with ErrKeyNotFound when nothing is stored.
func (w *Wrapper) Stat(identifier string) (fs.FileInfo, error) {
	s, err := w.open(identifier, "r")
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", identifier, err)
	}
	defer s.Close()

	info, err := s.stat()
	if err == nil && !info.meta.Exists {
		err = ErrKeyNotFound
	}
	w.metrics.observe(s.id.Scheme, opStat, err)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", identifier, err)
	}
	return info, nil
}

// Close unregisters every scheme and closes each distinct store once.
func (w *Wrapper) Close() error {
	w.mu.Lock()
	bindings := w.bindings
	w.bindings = make(map[string]*binding)
	w.mu.Unlock()

	var errs []error
	closed := make(map[infra.KVStore]bool)
	for scheme, b := range bindings {
		if closed[b.store] {
			continue
		}
		closed[b.store] = true
		if err := b.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", scheme, err))
		}
	}
	w.emitter.Close()
	return errors.Join(errs...)
}

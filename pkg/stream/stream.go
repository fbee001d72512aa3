package stream

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/events"
	"github.com/fystack/kvstream/pkg/infra"
)

// Stream is a cursor over one key of one store. Every operation reads or
// writes the whole value. A Stream is not safe for concurrent use.
type Stream struct {
	id      Identifier
	mode    Mode
	pos     int64
	binding *binding
	closed  bool
}

var (
	_ io.ReadWriteSeeker = (*Stream)(nil)
	_ io.Closer          = (*Stream)(nil)
)

func (s *Stream) Name() string   { return s.id.String() }
func (s *Stream) Key() string    { return s.id.Key }
func (s *Stream) Scheme() string { return s.id.Scheme }
func (s *Stream) Mode() Mode     { return s.mode }

// fetch returns the current value. An absent key is empty unless strict is
// set and the binding asks for an error.
func (s *Stream) fetch(strict bool) ([]byte, bool, error) {
	value, err := s.binding.store.Get(s.id.Key)
	if errors.Is(err, infra.ErrKeyNotFound) {
		if strict && s.binding.missingKey == enum.MissingKeyError {
			return nil, false, err
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, fs.ErrClosed
	}
	if !s.mode.read {
		return 0, fmt.Errorf("read %s: %w", s.Name(), ErrNotReadable)
	}

	value, _, err := s.fetch(true)
	s.binding.metrics.observe(s.id.Scheme, opRead, err)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.Name(), err)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= int64(len(value)) {
		return 0, io.EOF
	}

	n := copy(p, value[s.pos:])
	s.pos += int64(n)
	s.binding.metrics.addBytes(s.id.Scheme, opRead, n)
	return n, nil
}

// Write splices p into the value at the cursor and stores the result with a
// single Set. Writing past the end zero-fills the gap. A write that would
// grow the value beyond the binding's size limit fails without touching
// the store.
func (s *Stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, fs.ErrClosed
	}
	if !s.mode.write {
		return 0, fmt.Errorf("write %s: %w", s.Name(), ErrNotWritable)
	}
	if s.pos > s.binding.maxValueSize-int64(len(p)) {
		s.binding.metrics.observe(s.id.Scheme, opWrite, ErrValueTooLarge)
		return 0, fmt.Errorf("write %d bytes at %d to %s: %w", len(p), s.pos, s.Name(), ErrValueTooLarge)
	}

	if s.binding.locks != nil {
		unlock := s.binding.locks.lock(s.id.Key)
		defer unlock()
	}

	value, _, err := s.fetch(false)
	if err == nil {
		value = splice(value, s.pos, p)
		err = s.binding.store.Set(s.id.Key, value)
	}
	s.binding.metrics.observe(s.id.Scheme, opWrite, err)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", s.Name(), err)
	}

	offset := s.pos
	s.pos += int64(len(p))
	s.binding.metrics.addBytes(s.id.Scheme, opWrite, len(p))

	event := events.NewWriteEvent(s.id.Scheme, s.id.Key, offset, len(p), len(value))
	if err := s.binding.emitter.EmitWrite(event); err != nil {
		logger.Warn("Failed to emit write event",
			"scheme", s.id.Scheme,
			"key", s.id.Key,
			"error", err,
		)
	}
	return len(p), nil
}

func splice(value []byte, pos int64, data []byte) []byte {
	size := int64(len(value))
	if end := pos + int64(len(data)); end > size {
		size = end
	}
	out := make([]byte, size)
	copy(out, value)
	copy(out[pos:], data)
	return out
}

// Seek moves the cursor. SeekStart only accepts offsets strictly inside the
// value, so seeking to the exact length fails. SeekCurrent only moves
// forward and SeekEnd may not land before 0. On failure the cursor stays.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, fs.ErrClosed
	}

	length, err := s.length()
	if err != nil {
		return s.pos, fmt.Errorf("seek %s: %w", s.Name(), err)
	}

	var next int64
	switch whence {
	case io.SeekStart:
		if offset < 0 || offset >= length {
			return s.pos, s.seekError(offset, whence)
		}
		next = offset
	case io.SeekCurrent:
		if offset < 0 || offset > math.MaxInt64-s.pos {
			return s.pos, s.seekError(offset, whence)
		}
		next = s.pos + offset
	case io.SeekEnd:
		if length+offset < 0 {
			return s.pos, s.seekError(offset, whence)
		}
		next = length + offset
	default:
		return s.pos, s.seekError(offset, whence)
	}

	s.pos = next
	return s.pos, nil
}

func (s *Stream) seekError(offset int64, whence int) error {
	return fmt.Errorf("seek %s to %d (whence %d): %w", s.Name(), offset, whence, ErrInvalidSeek)
}

func (s *Stream) length() (int64, error) {
	value, _, err := s.fetch(false)
	return int64(len(value)), err
}

func (s *Stream) Tell() int64 {
	return s.pos
}

// EOF reports whether the cursor is at or past the end of the value.
func (s *Stream) EOF() (bool, error) {
	if s.closed {
		return false, fs.ErrClosed
	}
	length, err := s.length()
	if err != nil {
		return false, fmt.Errorf("eof %s: %w", s.Name(), err)
	}
	return s.pos >= length, nil
}

func (s *Stream) Stat() (fs.FileInfo, error) {
	if s.closed {
		return nil, fs.ErrClosed
	}
	info, err := s.stat()
	s.binding.metrics.observe(s.id.Scheme, opStat, err)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.Name(), err)
	}
	return info, nil
}

func (s *Stream) stat() (*FileInfo, error) {
	value, exists, err := s.fetch(false)
	if err != nil {
		return nil, err
	}
	meta := &Metadata{
		Scheme: s.id.Scheme,
		Key:    s.id.Key,
		Exists: exists,
		Size:   int64(len(value)),
	}
	if exists {
		if inspector, ok := s.binding.store.(infra.Inspector); ok {
			if info, err := inspector.Info(); err == nil {
				if entry, ok := info.Entry(s.id.Key); ok {
					meta.Hits = entry.Hits
					meta.CreatedAt = entry.CreatedAt
					meta.ModifiedAt = entry.ModifiedAt
					meta.AccessedAt = entry.AccessedAt
				}
			}
		}
	}
	return &FileInfo{meta: meta}, nil
}

// Close marks the stream closed. The store is left untouched.
func (s *Stream) Close() error {
	if s.closed {
		return fs.ErrClosed
	}
	s.closed = true
	logger.Debug("Stream closed", "stream", s.Name(), "pos", s.pos)
	return nil
}

package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
	drained  bool
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakePublisher) Drain() error {
	f.drained = true
	return nil
}

func TestEmitWrite(t *testing.T) {
	pub := &fakePublisher{}
	e := newEmitter(pub, "kvstream.written")

	require.NoError(t, e.EmitWrite(NewWriteEvent("apc", "a/b.txt", 3, 2, 5)))
	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "kvstream.written.apc", pub.subjects[0])

	var got WriteEvent
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, "write", got.Type)
	assert.Equal(t, "a/b.txt", got.Key)
	assert.Equal(t, int64(3), got.Offset)
	assert.Equal(t, 2, got.Length)
	assert.Equal(t, 5, got.Size)
	assert.NotZero(t, got.Timestamp)

	e.Close()
	assert.True(t, pub.drained)
}

func TestEmitWrite_DefaultSubjectAndErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	e := newEmitter(pub, "")
	assert.Equal(t, "kvstream.written.temp", e.Subject("temp"))
	assert.Error(t, e.EmitWrite(NewWriteEvent("temp", "k", 0, 1, 1)))
}

func TestNoop(t *testing.T) {
	e := Noop()
	assert.NoError(t, e.EmitWrite(WriteEvent{}))
	e.Close()
}

func TestDecodeWriteEvent(t *testing.T) {
	data, err := json.Marshal(NewWriteEvent("apc", "k", 1, 2, 3))
	require.NoError(t, err)

	got, err := DecodeWriteEvent(data)
	require.NoError(t, err)
	assert.Equal(t, "apc", got.Scheme)
	assert.Equal(t, 3, got.Size)

	_, err = DecodeWriteEvent([]byte("{not json"))
	assert.Error(t, err)

	_, err = DecodeWriteEvent([]byte(`{"type":"delete","key":"k"}`))
	assert.Error(t, err)
}

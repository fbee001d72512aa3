package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fystack/kvstream/pkg/common/constant"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/nats-io/nats.go"
)

const WriteEventType = "write"

// WriteEvent describes one completed stream write.
type WriteEvent struct {
	Type      string `json:"type"`
	Scheme    string `json:"scheme"`
	Key       string `json:"key"`
	Offset    int64  `json:"offset"`
	Length    int    `json:"length"`
	Size      int    `json:"size"`
	Timestamp int64  `json:"timestamp"`
}

func NewWriteEvent(scheme, key string, offset int64, length, size int) WriteEvent {
	return WriteEvent{
		Type:      WriteEventType,
		Scheme:    scheme,
		Key:       key,
		Offset:    offset,
		Length:    length,
		Size:      size,
		Timestamp: time.Now().UTC().Unix(),
	}
}

type Emitter interface {
	EmitWrite(event WriteEvent) error
	Close()
}

// publisher is the part of *nats.Conn the emitter needs.
type publisher interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type natsEmitter struct {
	conn          publisher
	subjectPrefix string
}

// NewNATSEmitter publishes every event as JSON on "<subjectPrefix>.<scheme>".
func NewNATSEmitter(conn *nats.Conn, subjectPrefix string) Emitter {
	return newEmitter(conn, subjectPrefix)
}

func newEmitter(conn publisher, subjectPrefix string) *natsEmitter {
	if subjectPrefix == "" {
		subjectPrefix = constant.DefaultSubjectTopic
	}
	return &natsEmitter{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (e *natsEmitter) Subject(scheme string) string {
	return e.subjectPrefix + "." + scheme
}

func (e *natsEmitter) EmitWrite(event WriteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.conn.Publish(e.Subject(event.Scheme), data)
}

func (e *natsEmitter) Close() {
	if e.conn != nil {
		_ = e.conn.Drain()
	}
}

type noopEmitter struct{}

// Noop drops every event.
func Noop() Emitter { return noopEmitter{} }

func (noopEmitter) EmitWrite(WriteEvent) error { return nil }
func (noopEmitter) Close()                     {}

// Subscribe calls handler for every write event published under
// subjectPrefix. Payloads that do not decode are logged and dropped.
func Subscribe(conn *nats.Conn, subjectPrefix string, handler func(subject string, event WriteEvent)) (*nats.Subscription, error) {
	if subjectPrefix == "" {
		subjectPrefix = constant.DefaultSubjectTopic
	}
	return conn.Subscribe(subjectPrefix+".>", func(msg *nats.Msg) {
		event, err := DecodeWriteEvent(msg.Data)
		if err != nil {
			logger.Error("Unmarshal write event failed", "subject", msg.Subject, "err", err)
			return
		}
		handler(msg.Subject, event)
	})
}

func DecodeWriteEvent(data []byte) (WriteEvent, error) {
	var event WriteEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return WriteEvent{}, err
	}
	if event.Type != WriteEventType {
		return WriteEvent{}, fmt.Errorf("unexpected event type %q", event.Type)
	}
	return event, nil
}

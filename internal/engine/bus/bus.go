// Package bus connects the protocol engine to one vehicle link. It owns the
// single dispatch goroutine: frames come in, decoded envelopes fan out to the
// registered handlers in arrival order.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/internal/pkg/metrics"
	"github.com/groundlink-io/groundlink/pkg/log"
)

// Transport moves opaque frames to and from the vehicle. Frames are whole
// messages; the transport never splits or merges them.
type Transport interface {
	// WriteFrame sends one frame. Fire-and-forget; delivery is not confirmed.
	WriteFrame(frame []byte) error

	// Frames is the push feed of received frames. The channel closes when the
	// transport shuts down.
	Frames() <-chan []byte

	// Close releases the transport.
	Close() error
}

// Handler consumes one decoded inbound envelope. Handlers run synchronously
// on the dispatch goroutine and must not block.
type Handler func(env mavlink.Envelope)

// Bus decodes inbound frames, tags them with sender identity and arrival
// time, and fans them out. It also retains the most recent envelope per
// message type so poll-based waiters (command acks, mission replies) can
// check for replies newer than their own start time.
type Bus struct {
	tp    Transport
	codec mavlink.Codec
	local mavlink.Identity

	now func() time.Time

	mu       sync.RWMutex
	handlers []Handler
	latest   map[string]mavlink.Envelope
}

// New creates a Bus sending from the given local (ground station) identity.
func New(tp Transport, codec mavlink.Codec, local mavlink.Identity) *Bus {
	return &Bus{
		tp:     tp,
		codec:  codec,
		local:  local,
		now:    time.Now,
		latest: make(map[string]mavlink.Envelope),
	}
}

// Subscribe registers a handler for every inbound envelope. Must be called
// before Run.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Send encodes and writes one outbound message. No delivery confirmation.
func (b *Bus) Send(msg mavlink.Message) error {
	frame, err := b.codec.Encode(msg, b.local)
	if err != nil {
		return err
	}
	return b.tp.WriteFrame(frame)
}

// Latest returns the most recent inbound envelope of the given message type.
func (b *Bus) Latest(msgType string) (mavlink.Envelope, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	env, ok := b.latest[msgType]
	return env, ok
}

// Run dispatches inbound frames until ctx is done or the transport closes.
// A frame that fails to decode is logged and dropped, never fatal.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame, ok := <-b.tp.Frames():
			if !ok {
				return nil
			}
			b.dispatch(frame)
		}
	}
}

func (b *Bus) dispatch(frame []byte) {
	msg, sender, err := b.codec.Decode(frame)
	if err != nil {
		metrics.FramesReceivedTotal.WithLabelValues("dropped").Inc()
		log.Warn("Dropping undecodable frame", "reason", err.Error())
		return
	}
	metrics.FramesReceivedTotal.WithLabelValues("decoded").Inc()
	metrics.MessagesDispatchedTotal.WithLabelValues(msg.Type()).Inc()

	env := mavlink.Envelope{
		Msg:        msg,
		Sender:     sender,
		ReceivedAt: b.now(),
	}

	b.mu.Lock()
	b.latest[msg.Type()] = env
	handlers := b.handlers
	b.mu.Unlock()

	for _, h := range handlers {
		h(env)
	}
}

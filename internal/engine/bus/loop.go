package bus

import (
	"sync"
	"time"
)

const closeTimeout = 5 * time.Second

// LoopTransport is an in-memory link used by the tests and the vehicle
// simulator. Frames written by the engine appear on Sent; frames pushed with
// Push appear on the engine's inbound feed.
type LoopTransport struct {
	inbound chan []byte
	sent    chan []byte

	closeOnce sync.Once
}

var _ Transport = (*LoopTransport)(nil)

func NewLoopTransport() *LoopTransport {
	return &LoopTransport{
		inbound: make(chan []byte, 256),
		sent:    make(chan []byte, 256),
	}
}

// Push delivers a frame to the engine as if it arrived from the vehicle.
func (t *LoopTransport) Push(frame []byte) {
	t.inbound <- frame
}

// Sent exposes every frame the engine has written.
func (t *LoopTransport) Sent() <-chan []byte {
	return t.sent
}

func (t *LoopTransport) WriteFrame(frame []byte) error {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	t.sent <- cp
	return nil
}

func (t *LoopTransport) Frames() <-chan []byte {
	return t.inbound
}

func (t *LoopTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.inbound)
	})
	return nil
}

package bus

import (
	"context"
	"sync"

	"github.com/groundlink-io/groundlink/pkg/mqtt"
	"github.com/groundlink-io/groundlink/pkg/mqtt/topic"
)

// MQTTTransport bridges the vehicle link over an MQTT broker. Uplink frames
// (vehicle to ground) arrive on {root}/up/{linkID}; outbound frames are
// published to {root}/down/{linkID}.
type MQTTTransport struct {
	client mqtt.Client
	up     string
	down   string

	frames chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

var _ Transport = (*MQTTTransport)(nil)

// NewMQTTTransport connects the given client and subscribes to the uplink
// topic. The client must not have been started yet.
func NewMQTTTransport(ctx context.Context, client mqtt.Client, topicRoot, linkID string) (*MQTTTransport, error) {
	topics := topic.NewBuilder(topicRoot)
	t := &MQTTTransport{
		client: client,
		up:     topics.Up(linkID),
		down:   topics.Down(linkID),
		frames: make(chan []byte, 64),
		done:   make(chan struct{}),
	}

	if err := client.Start(ctx); err != nil {
		return nil, err
	}
	if err := client.AwaitConnection(ctx); err != nil {
		return nil, err
	}

	err := client.Subscribe(ctx, t.up, 0, func(_ context.Context, _ string, payload []byte) {
		select {
		case t.frames <- payload:
		case <-t.done:
		}
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (t *MQTTTransport) WriteFrame(frame []byte) error {
	return t.client.Publish(context.Background(), t.down, 0, false, frame)
}

func (t *MQTTTransport) Frames() <-chan []byte {
	return t.frames
}

func (t *MQTTTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		_ = t.client.Unsubscribe(ctx, t.up)
		t.client.Disconnect(ctx)
		close(t.frames)
	})
	return nil
}

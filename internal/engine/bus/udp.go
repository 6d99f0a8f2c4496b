package bus

import (
	"errors"
	"net"
	"sync"

	"github.com/groundlink-io/groundlink/pkg/log"
)

const maxFrameSize = 2048

// UDPTransport is the classic ground-station link: listen on a local port,
// remember the address of whoever is sending telemetry, and send commands
// back there.
type UDPTransport struct {
	conn   *net.UDPConn
	frames chan []byte

	mu     sync.RWMutex
	remote *net.UDPAddr

	closeOnce sync.Once
}

var _ Transport = (*UDPTransport)(nil)

// NewUDPTransport listens on addr and starts the reader goroutine.
func NewUDPTransport(addr string) (*UDPTransport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}

	t := &UDPTransport{
		conn:   conn,
		frames: make(chan []byte, 64),
	}

	go t.readLoop()

	log.Info("UDP link listening", "addr", addr)
	return t, nil
}

func (t *UDPTransport) readLoop() {
	defer close(t.frames)

	buf := make([]byte, maxFrameSize)
	for {
		n, remote, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Error(err, "UDP read failed, closing link")
			}
			return
		}

		t.mu.Lock()
		t.remote = remote
		t.mu.Unlock()

		frame := make([]byte, n)
		copy(frame, buf[:n])

		select {
		case t.frames <- frame:
		default:
			// Reader outpaced the dispatcher. Telemetry is continuous, so
			// dropping the oldest pending frame is preferable to blocking
			// the socket.
			select {
			case <-t.frames:
			default:
			}
			t.frames <- frame
		}
	}
}

func (t *UDPTransport) WriteFrame(frame []byte) error {
	t.mu.RLock()
	remote := t.remote
	t.mu.RUnlock()

	if remote == nil {
		return errors.New("no vehicle has contacted this link yet")
	}

	_, err := t.conn.WriteToUDP(frame, remote)
	return err
}

func (t *UDPTransport) Frames() <-chan []byte {
	return t.frames
}

func (t *UDPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}

package uart

import (
	"context"
	"io"
	"sync"
)

// StreamBufferSize is the number of received bytes buffered by a Stream.
const StreamBufferSize = 256

// Stream implements Transport and BlockingReader over an io.ReadWriter,
// e.g. a tty or a websocket connection. A background reader moves
// received bytes into a buffer so ByteReady never blocks.
// ReadByte and ReadByteContext must be called from one goroutine.
type Stream struct {
	rw io.ReadWriter

	byteCh    chan byte
	errCh     chan error
	done      chan struct{}
	closeOnce sync.Once
	err       error
	wlock     sync.Mutex
}

// NewStream creates a Stream and starts reading from rw.
func NewStream(rw io.ReadWriter) *Stream {
	s := &Stream{
		rw:     rw,
		byteCh: make(chan byte, StreamBufferSize),
		errCh:  make(chan error, 1),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	buf := make([]byte, StreamBufferSize)
	for {
		n, err := s.rw.Read(buf)
		for _, b := range buf[:n] {
			select {
			case s.byteCh <- b:
			case <-s.done:
				return
			}
		}
		if err != nil {
			s.errCh <- err
			return
		}
	}
}

// WriteByte implements Transport.
func (s *Stream) WriteByte(b byte) error {
	s.wlock.Lock()
	defer s.wlock.Unlock()
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	_, err := s.rw.Write([]byte{b})
	return err
}

// ByteReady implements Transport.
func (s *Stream) ByteReady() bool {
	return len(s.byteCh) > 0 || len(s.errCh) > 0 || s.err != nil
}

// ReadByte implements Transport.
func (s *Stream) ReadByte() (byte, error) {
	return s.ReadByteContext(context.Background())
}

// ReadByteContext implements BlockingReader.
func (s *Stream) ReadByteContext(ctx context.Context) (byte, error) {
	select {
	case b := <-s.byteCh:
		return b, nil
	default:
	}
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}
	if s.err != nil {
		return 0, s.err
	}
	select {
	case b := <-s.byteCh:
		return b, nil
	case err := <-s.errCh:
		s.err = err
		// bytes read along with the error are delivered first.
		select {
		case b := <-s.byteCh:
			return b, nil
		default:
		}
		return 0, err
	case <-s.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close stops the Stream and closes the underlying stream if possible.
func (s *Stream) Close() (err error) {
	s.closeOnce.Do(func() {
		close(s.done)
		if closer, ok := s.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return
}

package uart

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Line parameters of the simulated link.
const (
	// BaudRate is fixed, the link runs 8N1.
	BaudRate = 9600
	// ByteTime is the time to shift one 10-bit frame at BaudRate.
	ByteTime = time.Second * 10 / BaudRate
	// FIFODepth is the receive FIFO depth of the simulated peripheral.
	FIFODepth = 2
)

type simFrame struct {
	data    byte
	framing bool
}

// Sim is an in-memory model of an EUSART peripheral. Bytes arriving on the
// line side are queued into a small receive FIFO; when the FIFO is full the
// overrun flag is raised and reception stops until ResetReceiver.
// Transmitted bytes go to Output, or are collected when Output is nil.
type Sim struct {
	Output io.Writer

	lock    sync.Mutex
	cond    *sync.Cond
	rx      []simFrame
	overrun bool
	closed  bool
	tx      bytes.Buffer
}

// NewSim creates a Sim.
func NewSim(output io.Writer) *Sim {
	s := &Sim{Output: output}
	s.cond = sync.NewCond(&s.lock)
	return s
}

// Inject delivers bytes on the line side.
func (s *Sim) Inject(data ...byte) {
	s.lock.Lock()
	for _, b := range data {
		s.push(simFrame{data: b})
	}
	s.lock.Unlock()
}

// InjectFramingError delivers a byte with a broken stop bit.
func (s *Sim) InjectFramingError(b byte) {
	s.lock.Lock()
	s.push(simFrame{data: b, framing: true})
	s.lock.Unlock()
}

// InjectFrom delivers everything read from r at line speed until r is
// exhausted or ctx is done.
func (s *Sim) InjectFrom(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(ByteTime):
			}
			s.Inject(b)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (s *Sim) push(f simFrame) {
	if s.closed || s.overrun {
		return
	}
	if len(s.rx) >= FIFODepth {
		s.overrun = true
	} else {
		s.rx = append(s.rx, f)
	}
	s.cond.Broadcast()
}

// Overrun reports the overrun flag.
func (s *Sim) Overrun() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.overrun
}

// ByteReady implements Receiver.
func (s *Sim) ByteReady() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.rx) > 0 || s.closed
}

// Receive implements Receiver. It waits until a byte is in the FIFO.
func (s *Sim) Receive() (byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for len(s.rx) == 0 && !s.overrun && !s.closed {
		s.cond.Wait()
	}
	if s.overrun {
		return 0, ErrOverrun
	}
	if len(s.rx) == 0 {
		return 0, io.EOF
	}
	f := s.rx[0]
	s.rx = s.rx[1:]
	if f.framing {
		return 0, &FramingError{Data: f.data}
	}
	return f.data, nil
}

// ResetReceiver implements Receiver.
func (s *Sim) ResetReceiver() {
	s.lock.Lock()
	s.overrun = false
	s.lock.Unlock()
}

// WriteByte implements Receiver.
func (s *Sim) WriteByte(b byte) error {
	if s.Output != nil {
		_, err := s.Output.Write([]byte{b})
		return err
	}
	s.lock.Lock()
	s.tx.WriteByte(b)
	s.lock.Unlock()
	return nil
}

// Transmitted returns and clears the collected output.
func (s *Sim) Transmitted() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := append([]byte(nil), s.tx.Bytes()...)
	s.tx.Reset()
	return out
}

// Close stops reception. Pending bytes can still be received.
func (s *Sim) Close() error {
	s.lock.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.lock.Unlock()
	return nil
}

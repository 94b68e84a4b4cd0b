package echo

import (
	"io"

	"github.com/golang/glog"
)

// Banner is written once by the host before any byte is processed.
const Banner = "UART Ready\r\n"

// LineEnding terminates every echoed line regardless of the terminator received.
var LineEnding = []byte{'\r', '\n'}

// Observer is notified about completed and dropped lines.
// The line passed in is a copy owned by the observer.
type Observer interface {
	LineEchoed(line []byte)
	LineDropped(line []byte)
	ReceiveError(err error)
}

// Observers notifies multiple Observers.
type Observers []Observer

// LineEchoed implements Observer.
func (o Observers) LineEchoed(line []byte) {
	for _, ob := range o {
		ob.LineEchoed(line)
	}
}

// LineDropped implements Observer.
func (o Observers) LineDropped(line []byte) {
	for _, ob := range o {
		ob.LineDropped(line)
	}
}

// ReceiveError implements Observer.
func (o Observers) ReceiveError(err error) {
	for _, ob := range o {
		ob.ReceiveError(err)
	}
}

// Engine echoes lines to a byte writer.
type Engine struct {
	Writer   io.ByteWriter
	Observer Observer

	buf LineBuffer
}

// NewEngine creates an Engine writing to w.
func NewEngine(w io.ByteWriter) *Engine {
	return &Engine{Writer: w}
}

// Len returns the number of bytes pending in the current line.
func (e *Engine) Len() int {
	return e.buf.Len()
}

// WriteBanner writes the startup banner.
func (e *Engine) WriteBanner() error {
	return e.write([]byte(Banner))
}

// Feed consumes one byte and performs the output of the transition
// before returning. The returned error is always from the writer.
func (e *Engine) Feed(b byte) (Action, error) {
	r := e.buf.Feed(b)
	switch r.Action {
	case ActionFlush:
		if err := e.write(r.Line); err != nil {
			return r.Action, err
		}
		if err := e.write(LineEnding); err != nil {
			return r.Action, err
		}
		if ob := e.Observer; ob != nil {
			ob.LineEchoed(copyLine(r.Line))
		}
	case ActionOverflow:
		glog.V(2).Infof("line overflow, %d bytes dropped", len(r.Line))
		if ob := e.Observer; ob != nil {
			ob.LineDropped(copyLine(r.Line))
		}
	}
	return r.Action, nil
}

func (e *Engine) write(p []byte) error {
	for _, b := range p {
		if err := e.Writer.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

func copyLine(line []byte) []byte {
	return append([]byte(nil), line...)
}

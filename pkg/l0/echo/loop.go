package echo

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartecho/pkg/l0/uart"
)

// Stats are counters of a running Loop.
type Stats struct {
	Bytes         uint64
	Lines         uint64
	Overflows     uint64
	FramingErrors uint64
}

// Loop pulls bytes from a Transport and feeds the Engine.
// It is the only owner of the Engine.
type Loop struct {
	Transport uart.Transport
	Engine    *Engine
	// PollInterval is how long to idle when no byte is ready.
	// Zero only yields the processor. Ignored if the transport
	// implements uart.BlockingReader.
	PollInterval time.Duration
	// Polling forces polling even with a uart.BlockingReader.
	Polling bool

	bytes         uint64
	lines         uint64
	overflows     uint64
	framingErrors uint64
}

// NewLoop creates a Loop echoing back to the same transport.
func NewLoop(t uart.Transport) *Loop {
	return &Loop{Transport: t, Engine: NewEngine(t)}
}

// Stats returns a snapshot of the counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Bytes:         atomic.LoadUint64(&l.bytes),
		Lines:         atomic.LoadUint64(&l.lines),
		Overflows:     atomic.LoadUint64(&l.overflows),
		FramingErrors: atomic.LoadUint64(&l.framingErrors),
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Engine.WriteBanner(); err != nil {
		return err
	}
	if br, ok := l.Transport.(uart.BlockingReader); ok && !l.Polling {
		return l.runBlocking(ctx, br)
	}
	return l.runPolling(ctx)
}

func (l *Loop) runPolling(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !l.Transport.ByteReady() {
			l.idle()
			continue
		}
		b, err := l.Transport.ReadByte()
		if err = l.process(b, err); err != nil {
			return err
		}
	}
}

func (l *Loop) runBlocking(ctx context.Context, br uart.BlockingReader) error {
	for {
		b, err := br.ReadByteContext(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = l.process(b, err); err != nil {
			return err
		}
	}
}

func (l *Loop) idle() {
	if l.PollInterval > 0 {
		time.Sleep(l.PollInterval)
	} else {
		runtime.Gosched()
	}
}

func (l *Loop) process(b byte, err error) error {
	if err != nil {
		var fe *uart.FramingError
		if !errors.As(err, &fe) {
			return err
		}
		atomic.AddUint64(&l.framingErrors, 1)
		glog.Warningf("receive: %v", err)
		if ob := l.Engine.Observer; ob != nil {
			ob.ReceiveError(err)
		}
		return nil
	}
	atomic.AddUint64(&l.bytes, 1)
	action, err := l.Engine.Feed(b)
	if err != nil {
		return err
	}
	switch action {
	case ActionFlush:
		atomic.AddUint64(&l.lines, 1)
	case ActionOverflow:
		atomic.AddUint64(&l.overflows, 1)
	}
	return nil
}

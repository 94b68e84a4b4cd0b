package uart

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"
)

// FramingPolicy decides how a framing error is reported.
type FramingPolicy int

const (
	// FramingSubstitute replaces the corrupted byte with FramingSentinel,
	// which is indistinguishable from a received NUL.
	FramingSubstitute FramingPolicy = iota
	// FramingSurface returns *FramingError from ReadByte.
	FramingSurface
)

// String implements fmt.Stringer.
func (p FramingPolicy) String() string {
	switch p {
	case FramingSubstitute:
		return "substitute"
	case FramingSurface:
		return "surface"
	}
	return fmt.Sprintf("FramingPolicy(%d)", int(p))
}

// ParseFramingPolicy parses the name of a policy.
func ParseFramingPolicy(s string) (FramingPolicy, error) {
	switch s {
	case "", "substitute":
		return FramingSubstitute, nil
	case "surface":
		return FramingSurface, nil
	}
	return 0, fmt.Errorf("unknown framing policy %q", s)
}

// Recovering implements Transport over a Receiver.
type Recovering struct {
	Receiver Receiver
	Policy   FramingPolicy

	overruns      uint64
	framingErrors uint64
}

// NewRecovering wraps a Receiver.
func NewRecovering(r Receiver, policy FramingPolicy) *Recovering {
	return &Recovering{Receiver: r, Policy: policy}
}

// WriteByte implements Transport.
func (t *Recovering) WriteByte(b byte) error {
	return t.Receiver.WriteByte(b)
}

// ByteReady implements Transport.
func (t *Recovering) ByteReady() bool {
	return t.Receiver.ByteReady()
}

// ReadByte implements Transport.
func (t *Recovering) ReadByte() (byte, error) {
	for {
		b, err := t.Receiver.Receive()
		if err == nil {
			return b, nil
		}
		if err == ErrOverrun {
			atomic.AddUint64(&t.overruns, 1)
			glog.V(1).Info("receiver overrun, re-enabling receiver")
			t.Receiver.ResetReceiver()
			continue
		}
		var fe *FramingError
		if !errors.As(err, &fe) {
			return 0, err
		}
		atomic.AddUint64(&t.framingErrors, 1)
		if t.Policy == FramingSurface {
			return 0, err
		}
		glog.V(1).Infof("%v, substituting 0x%02x", err, FramingSentinel)
		return FramingSentinel, nil
	}
}

// Overruns returns the number of overruns recovered.
func (t *Recovering) Overruns() uint64 {
	return atomic.LoadUint64(&t.overruns)
}

// FramingErrors returns the number of framing errors seen.
func (t *Recovering) FramingErrors() uint64 {
	return atomic.LoadUint64(&t.framingErrors)
}

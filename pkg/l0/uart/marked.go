package uart

import "io"

// MarkedReceiver implements Receiver over a Transport carrying bytes
// marked the POSIX PARMRK way: a byte received with a framing or parity
// error arrives as 0xff 0x00 X, a literal 0xff arrives as 0xff 0xff.
type MarkedReceiver struct {
	Transport Transport
}

// NewMarkedReceiver creates a MarkedReceiver.
func NewMarkedReceiver(t Transport) *MarkedReceiver {
	return &MarkedReceiver{Transport: t}
}

// WriteByte implements Receiver.
func (r *MarkedReceiver) WriteByte(b byte) error {
	return r.Transport.WriteByte(b)
}

// ByteReady implements Receiver.
func (r *MarkedReceiver) ByteReady() bool {
	return r.Transport.ByteReady()
}

// Receive implements Receiver.
func (r *MarkedReceiver) Receive() (byte, error) {
	b, err := r.Transport.ReadByte()
	if err != nil || b != 0xff {
		return b, err
	}
	if b, err = r.Transport.ReadByte(); err != nil {
		return 0, unexpectedEOF(err)
	}
	switch b {
	case 0xff:
		return 0xff, nil
	case 0:
		if b, err = r.Transport.ReadByte(); err != nil {
			return 0, unexpectedEOF(err)
		}
		return 0, &FramingError{Data: b}
	}
	// not a valid mark, deliver the byte after the escape.
	return b, nil
}

// ResetReceiver implements Receiver. Overruns are not reported in band.
func (r *MarkedReceiver) ResetReceiver() {
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

package uart

import (
	"context"
	"io"
)

// Transport is the byte level serial link.
type Transport interface {
	io.ByteWriter
	io.ByteReader
	// ByteReady reports whether ReadByte can return without waiting.
	ByteReady() bool
}

// BlockingReader is implemented by transports able to wait for a byte
// without spinning.
type BlockingReader interface {
	ReadByteContext(context.Context) (byte, error)
}

// Receiver is the peripheral side of a link. Receive may fail with
// ErrOverrun or *FramingError, which are recovered by Recovering.
type Receiver interface {
	io.ByteWriter
	ByteReady() bool
	Receive() (byte, error)
	// ResetReceiver toggles receive enable, clearing an overrun.
	ResetReceiver()
}

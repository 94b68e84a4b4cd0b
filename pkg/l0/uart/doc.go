// Package uart abstracts the byte oriented serial link the echo engine
// talks to.
//
// A Transport writes one byte at a time, blocking until the link accepts
// it, and reads one byte at a time after ByteReady reports data. Receiver
// errors raised by the peripheral side are recovered by Recovering:
// an overrun re-enables the receiver, a framing error either turns into
// the sentinel byte 0 or is surfaced to the caller, depending on the
// FramingPolicy.
package uart

// Package echo provides the line echo engine run by the UART host.
package echo

// Bytes received from a serial link are accumulated into a fixed size line
// buffer. A line terminator ('\r' or '\n') flushes the buffer: every buffered
// byte is written back in receipt order followed by "\r\n". An empty line
// produces no output. A literal byte arriving when the buffer is full drops
// the pending line silently and the engine starts over.
//
// The engine is driven by Loop, which is the only owner of the buffer.

package echo

// Capacity is the size of the line buffer. One slot is reserved, so at most
// Capacity-1 bytes are held between flushes.
const Capacity = 64

// MaxLineLen is the longest line the buffer keeps.
const MaxLineLen = Capacity - 1

// Action is the outcome of feeding one byte.
type Action int

const (
	// ActionNone means a terminator was received on an empty line.
	ActionNone Action = iota
	// ActionAppend means the byte was appended to the line.
	ActionAppend
	// ActionFlush means the line is complete and must be echoed.
	ActionFlush
	// ActionOverflow means the line was dropped because the buffer is full.
	ActionOverflow
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionAppend:
		return "append"
	case ActionFlush:
		return "flush"
	case ActionOverflow:
		return "overflow"
	}
	return "unknown"
}

// Result indicates the result after one byte is fed.
type Result struct {
	Action Action
	// Line is the completed line on ActionFlush, or the dropped content on
	// ActionOverflow. It aliases the buffer and is only valid until the
	// next Feed.
	Line []byte
}

// IsTerminator checks if b ends a line.
func IsTerminator(b byte) bool {
	return b == '\r' || b == '\n'
}

// LineBuffer accumulates bytes of the current line.
type LineBuffer struct {
	buf    [Capacity]byte
	cursor int
}

// Len returns the number of buffered bytes.
func (l *LineBuffer) Len() int {
	return l.cursor
}

// Bytes returns the buffered bytes.
func (l *LineBuffer) Bytes() []byte {
	return l.buf[:l.cursor]
}

// Reset drops the buffered bytes.
func (l *LineBuffer) Reset() {
	l.cursor = 0
}

// Feed consumes one byte.
func (l *LineBuffer) Feed(b byte) (r Result) {
	switch {
	case IsTerminator(b):
		if l.cursor == 0 {
			r.Action = ActionNone
			return
		}
		r.Action, r.Line = ActionFlush, l.buf[:l.cursor]
	case l.cursor < MaxLineLen:
		l.buf[l.cursor] = b
		l.cursor++
		r.Action = ActionAppend
		return
	default:
		r.Action, r.Line = ActionOverflow, l.buf[:l.cursor]
	}
	l.cursor = 0
	return
}

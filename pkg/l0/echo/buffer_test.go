package echo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type feedStep struct {
	in     byte
	action Action
	line   []byte
	cursor int
}

type feedSequenceBuilder struct {
	steps  []feedStep
	cursor int
}

func feedSequence() *feedSequenceBuilder {
	return &feedSequenceBuilder{}
}

func (b *feedSequenceBuilder) appends(in ...byte) *feedSequenceBuilder {
	for _, c := range in {
		b.cursor++
		b.steps = append(b.steps, feedStep{in: c, action: ActionAppend, cursor: b.cursor})
	}
	return b
}

func (b *feedSequenceBuilder) noop(in byte) *feedSequenceBuilder {
	b.steps = append(b.steps, feedStep{in: in, action: ActionNone})
	return b
}

func (b *feedSequenceBuilder) flush(in byte, line string) *feedSequenceBuilder {
	b.cursor = 0
	b.steps = append(b.steps, feedStep{in: in, action: ActionFlush, line: []byte(line)})
	return b
}

func (b *feedSequenceBuilder) overflow(in byte, dropped []byte) *feedSequenceBuilder {
	b.cursor = 0
	b.steps = append(b.steps, feedStep{in: in, action: ActionOverflow, line: dropped})
	return b
}

func (b *feedSequenceBuilder) build() []feedStep {
	return b.steps
}

func TestLineBuffer(t *testing.T) {
	full := bytes.Repeat([]byte{'x'}, MaxLineLen)
	testCases := []struct {
		name  string
		steps []feedStep
	}{
		{
			name: "single line",
			steps: feedSequence().
				appends('H', 'i').flush('\n', "Hi").
				build(),
		},
		{
			name: "carriage return",
			steps: feedSequence().
				appends('A', 'B').flush('\r', "AB").
				build(),
		},
		{
			name: "empty lines",
			steps: feedSequence().
				noop('\r').noop('\r').noop('\n').
				build(),
		},
		{
			name: "crlf is flush then noop",
			steps: feedSequence().
				appends('o', 'k').flush('\r', "ok").noop('\n').
				appends('o', 'k').flush('\n', "ok").noop('\r').
				build(),
		},
		{
			name: "longest line",
			steps: feedSequence().
				appends(full...).flush('\n', string(full)).
				build(),
		},
		{
			name: "overflow",
			steps: feedSequence().
				appends(full...).overflow('x', full).
				noop('\n').
				build(),
		},
		{
			name: "recover after overflow",
			steps: feedSequence().
				appends(full...).overflow('y', full).
				appends('a', 'b', 'c').flush('\r', "abc").
				build(),
		},
		{
			name: "nul is literal",
			steps: feedSequence().
				appends(0, 'a', 0).flush('\n', "\x00a\x00").
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf LineBuffer
			for n, step := range tc.steps {
				r := buf.Feed(step.in)
				require.Equalf(t, step.action, r.Action, "step %d action", n)
				if len(step.line) == 0 {
					require.Emptyf(t, r.Line, "step %d line", n)
				} else {
					require.Equalf(t, step.line, r.Line, "step %d line", n)
				}
				require.Equalf(t, step.cursor, buf.Len(), "step %d cursor", n)
			}
		})
	}
}

func TestLineBufferNeverExceedsCapacity(t *testing.T) {
	var buf LineBuffer
	for i := 0; i < Capacity*4; i++ {
		buf.Feed('z')
		require.True(t, buf.Len() <= MaxLineLen)
	}
}

func TestLineBufferReset(t *testing.T) {
	var buf LineBuffer
	buf.Feed('a')
	buf.Feed('b')
	require.Equal(t, []byte("ab"), buf.Bytes())
	buf.Reset()
	require.Equal(t, 0, buf.Len())
	require.Equal(t, ActionNone, buf.Feed('\n').Action)
}

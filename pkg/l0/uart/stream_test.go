package uart

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pipeReadWriter struct {
	*io.PipeReader
	out bytes.Buffer
}

func (p *pipeReadWriter) Write(b []byte) (int, error) {
	return p.out.Write(b)
}

func TestStreamRead(t *testing.T) {
	r, w := io.Pipe()
	s := NewStream(&pipeReadWriter{PipeReader: r})
	defer s.Close()
	require.False(t, s.ByteReady())

	go w.Write([]byte("ab"))
	for _, expect := range []byte("ab") {
		b, err := s.ReadByteContext(context.Background())
		require.NoError(t, err)
		require.Equal(t, expect, b)
	}

	w.CloseWithError(errors.New("unplugged"))
	require.Eventually(t, s.ByteReady, time.Second, time.Millisecond)
	_, err := s.ReadByte()
	require.EqualError(t, err, "unplugged")
	// the error is sticky.
	_, err = s.ReadByte()
	require.EqualError(t, err, "unplugged")
}

func TestStreamReadContext(t *testing.T) {
	r, _ := io.Pipe()
	s := NewStream(&pipeReadWriter{PipeReader: r})
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.ReadByteContext(ctx)
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestStreamWriteAndClose(t *testing.T) {
	r, _ := io.Pipe()
	rw := &pipeReadWriter{PipeReader: r}
	s := NewStream(rw)
	require.NoError(t, s.WriteByte('x'))
	require.NoError(t, s.WriteByte('y'))
	require.Equal(t, "xy", rw.out.String())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, ErrClosed, s.WriteByte('z'))
	_, err := s.ReadByte()
	require.Equal(t, ErrClosed, err)
}

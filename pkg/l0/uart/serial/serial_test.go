//go:build linux

package serial

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartecho/pkg/l0/echo"
	"github.com/robotalks/uartecho/pkg/l0/uart"
)

func openPair(t *testing.T) (master io.ReadWriter, port *Port) {
	m, s, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(); s.Close() })

	port, err = Open(Config{Device: s.Name()})
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })
	return m, port
}

func readN(t *testing.T, r io.Reader, n int) string {
	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			errCh <- err
			return
		}
		resultCh <- string(buf)
	}()
	select {
	case s := <-resultCh:
		return s
	case err := <-errCh:
		t.Fatalf("read error: %v", err)
	case <-time.After(time.Second):
		t.Fatalf("timeout reading %d bytes", n)
	}
	return ""
}

func TestPortRaw(t *testing.T) {
	master, port := openPair(t)

	_, err := master.Write([]byte("a\rb\n"))
	require.NoError(t, err)
	require.Equal(t, "a\rb\n", readN(t, port, 4))

	_, err = port.Write([]byte("x\r\n"))
	require.NoError(t, err)
	require.Equal(t, "x\r\n", readN(t, master, 3))
}

func TestPortEcho(t *testing.T) {
	master, port := openPair(t)
	stream := uart.NewStream(port)
	loop := echo.NewLoop(stream)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	require.Equal(t, echo.Banner, readN(t, master, len(echo.Banner)))
	_, err := master.Write([]byte("Hi\n\r\rok\r"))
	require.NoError(t, err)
	require.Equal(t, "Hi\r\nok\r\n", readN(t, master, 8))

	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestPortCloseUnblocksRead(t *testing.T) {
	_, port := openPair(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := port.Read(make([]byte, 1))
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, port.Close())
	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("read not unblocked by close")
	}
}

func TestPortMarkErrors(t *testing.T) {
	m, s, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(); s.Close() })
	port, err := Open(Config{Device: s.Name(), MarkErrors: true})
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })

	// a literal 0xff is escaped when errors are marked.
	_, err = m.Write([]byte{'a', 0xff, '\n'})
	require.NoError(t, err)
	stream := uart.NewStream(port)
	r := uart.NewRecovering(uart.NewMarkedReceiver(stream), uart.FramingSurface)
	var got []byte
	for len(got) < 3 {
		b, err := r.ReadByte()
		require.NoError(t, err)
		got = append(got, b)
	}
	require.Equal(t, []byte{'a', 0xff, '\n'}, got)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(Config{Device: "/dev/does-not-exist"})
	require.Error(t, err)
}

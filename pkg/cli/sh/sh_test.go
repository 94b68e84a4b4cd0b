package sh

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartecho/pkg/l0/echo"
	"github.com/robotalks/uartecho/pkg/l1/websocket"
)

func TestParseHex(t *testing.T) {
	testCases := []struct {
		words  []string
		result []byte
		err    bool
	}{
		{[]string{"48", "69", "0a"}, []byte("Hi\n"), false},
		{[]string{"48690D"}, []byte("Hi\r"), false},
		{[]string{"0x00", "0xff"}, []byte{0, 0xff}, false},
		{[]string{"a"}, []byte{0x0a}, false},
		{[]string{"zz"}, nil, true},
		{nil, nil, false},
	}
	for _, tc := range testCases {
		t.Run(strings.Join(tc.words, " "), func(t *testing.T) {
			data, err := ParseHex(tc.words...)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.result, data)
		})
	}
}

func nextLine(t *testing.T, c *Conn) string {
	select {
	case line := <-c.Lines():
		return line
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for line")
	}
	return ""
}

func TestConnLines(t *testing.T) {
	local, remote := net.Pipe()
	c := NewConn("pipe", local)
	go func() {
		remote.Write([]byte(echo.Banner + "Hi\r\n\x00b\r\n"))
		buf := make([]byte, 3)
		n, _ := remote.Read(buf)
		remote.Write(buf[:n])
		remote.Close()
	}()
	require.Equal(t, "UART Ready", nextLine(t, c))
	require.Equal(t, "Hi", nextLine(t, c))
	require.Equal(t, "\x00b", nextLine(t, c))
	require.NoError(t, c.Send([]byte("x\r\n")))
	require.Equal(t, "x", nextLine(t, c))
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("receive not stopped")
	}
	require.NoError(t, c.Err())
	require.Equal(t, "sent 3 bytes, received 4 lines, 0 lines not consumed", c.Stats())
	c.Close()
}

func TestDialWebsocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ts := httptest.NewServer(websocket.NewServer("").Handler(ctx))
	defer ts.Close()

	c, err := Dial("ws" + strings.TrimPrefix(ts.URL, "http"))
	require.NoError(t, err)
	defer c.Close()
	require.Equal(t, "UART Ready", nextLine(t, c))
	require.NoError(t, c.Send([]byte("hello\n\n")))
	require.Equal(t, "hello", nextLine(t, c))
	require.NoError(t, c.Send([]byte(strings.Repeat("x", echo.Capacity)+"ok\r")))
	require.Equal(t, "ok", nextLine(t, c))
}

func TestDialMissingDevice(t *testing.T) {
	_, err := Dial("/nonexistent/tty")
	require.Error(t, err)
}

package env

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/uartecho/pkg/framework"
	"github.com/robotalks/uartecho/pkg/l0/echo"
	"github.com/robotalks/uartecho/pkg/l0/uart"
)

func TestNewConfigCopiesDefault(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, *Default(), *conf)
	conf.Device = "/dev/null"
	require.NotEqual(t, "/dev/null", Default().Device)
}

func TestNewHost(t *testing.T) {
	testCases := []struct {
		name      string
		conf      Config
		runnables int
		loop      bool
		server    bool
	}{
		{
			name:      "sim",
			conf:      Config{Transport: TransportSim, PollInterval: time.Millisecond},
			runnables: 2,
			loop:      true,
		},
		{
			name:      "sim with websocket",
			conf:      Config{Transport: TransportSim, Framing: "surface", Listen: "127.0.0.1:0"},
			runnables: 3,
			loop:      true,
			server:    true,
		},
		{
			name:      "websocket only",
			conf:      Config{Transport: TransportNone, Listen: "127.0.0.1:0"},
			runnables: 1,
			server:    true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := tc.conf
			h, err := conf.NewHost()
			require.NoError(t, err)
			defer h.Close()
			require.Len(t, h.Runnables(), tc.runnables)
			require.Equal(t, tc.loop, h.Loop != nil)
			require.Equal(t, tc.server, h.Server != nil)
			require.Nil(t, h.Publisher)
			if h.Loop != nil {
				require.Equal(t, conf.PollInterval, h.Loop.PollInterval)
				_, ok := h.Loop.Transport.(*uart.Recovering)
				require.True(t, ok)
			}
		})
	}
}

func TestNewHostErrors(t *testing.T) {
	testCases := []struct {
		name string
		conf Config
	}{
		{"unknown transport", Config{Transport: "carrier-pigeon"}},
		{"bad framing", Config{Transport: TransportSim, Framing: "ignore"}},
		{"nothing to run", Config{Transport: TransportNone}},
		{"missing device", Config{Transport: TransportSerial, Device: "/nonexistent/tty"}},
		{"publish without id", Config{Transport: TransportSim, MQTTBrokerURL: "tcp://localhost:1883"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := tc.conf
			_, err := conf.NewHost()
			require.Error(t, err)
		})
	}
}

func TestHostSimEndsOnInputEOF(t *testing.T) {
	var out bytes.Buffer
	conf := Config{
		Transport: TransportSim,
		SimInput:  strings.NewReader("Hi\n"),
		SimOutput: &out,
	}
	h, err := conf.NewHost()
	require.NoError(t, err)
	defer h.Close()

	r := fx.NewRunner().Go(h.Runnables()...)
	done := make(chan error, 1)
	go func() { done <- r.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("host did not stop on input EOF")
	}
	require.Equal(t, echo.Banner+"Hi\r\n", out.String())
	stats := h.Loop.Stats()
	require.Equal(t, uint64(3), stats.Bytes)
	require.Equal(t, uint64(1), stats.Lines)
}

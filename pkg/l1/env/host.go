package env

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/uartecho/pkg/framework"
	"github.com/robotalks/uartecho/pkg/l0/echo"
	"github.com/robotalks/uartecho/pkg/l0/uart"
	"github.com/robotalks/uartecho/pkg/l1/mqtt"
	"github.com/robotalks/uartecho/pkg/l1/websocket"
)

// Host is an assembled echo host.
type Host struct {
	Config    *Config
	Loop      *echo.Loop
	Publisher *mqtt.Publisher
	Server    *websocket.Server

	runnables []fx.Runnable
	closers   []io.Closer
	transport io.Closer
}

// NewHost creates Host from config.
func (c *Config) NewHost() (*Host, error) {
	policy, err := uart.ParseFramingPolicy(c.Framing)
	if err != nil {
		return nil, err
	}
	h := &Host{Config: c}
	observer := echo.Observers{logObserver{}}
	if c.MQTTBrokerURL != "" {
		if c.ID == "" {
			return nil, fmt.Errorf("host id must be specified to publish events")
		}
		h.Publisher, err = mqtt.NewPublisher(c.MQTTBrokerURL, c.ID, mqtt.HostMeta{
			Description: "UART line echo",
			Transport:   c.Transport,
			Device:      c.Device,
		})
		if err != nil {
			return nil, fmt.Errorf("create MQTT publisher error: %w", err)
		}
		observer = append(observer, h.Publisher)
		h.runnables = append(h.runnables, h.Publisher)
	}

	transport, err := h.openTransport(policy)
	if err != nil {
		h.Close()
		return nil, err
	}
	if transport != nil {
		h.Loop = echo.NewLoop(transport)
		h.Loop.PollInterval = c.PollInterval
		h.Loop.Engine.Observer = observer
		h.runnables = append(h.runnables, fx.NamedRun("echo:"+c.Transport, fx.RunFunc(h.runLoop)))
	}

	if c.Listen != "" {
		h.Server = websocket.NewServer(c.Listen)
		h.Server.Observer = observer
		h.runnables = append(h.runnables, h.Server)
	}

	if h.Loop == nil && h.Server == nil {
		h.Close()
		return nil, fmt.Errorf("no transport and no websocket listener configured")
	}
	return h, nil
}

// MustNewHost creates Host and fails on error.
func (c *Config) MustNewHost() *Host {
	h, err := c.NewHost()
	if err != nil {
		glog.Exit(err)
	}
	return h
}

func (h *Host) openTransport(policy uart.FramingPolicy) (uart.Transport, error) {
	switch h.Config.Transport {
	case TransportSerial:
		port, err := openSerial(h.Config.Device, policy == uart.FramingSurface)
		if err != nil {
			return nil, err
		}
		stream := uart.NewStream(port)
		h.closers = append(h.closers, stream)
		h.transport = stream
		glog.Infof("serial %s opened, 9600 8N1, framing errors %s", h.Config.Device, policy)
		if policy == uart.FramingSurface {
			return uart.NewRecovering(uart.NewMarkedReceiver(stream), policy), nil
		}
		// the kernel substitutes 0x00 for bytes with framing errors.
		return stream, nil
	case TransportSim:
		output, input := h.Config.SimOutput, h.Config.SimInput
		if output == nil {
			output = os.Stdout
		}
		if input == nil {
			input = os.Stdin
		}
		sim := uart.NewSim(output)
		h.closers = append(h.closers, sim)
		h.transport = sim
		h.runnables = append(h.runnables, fx.NamedRun("sim-input", fx.RunFunc(func(ctx context.Context) error {
			return injectInput(ctx, sim, input)
		})))
		return uart.NewRecovering(sim, policy), nil
	case TransportNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown transport %q", h.Config.Transport)
}

// injectInput feeds the simulated line from r. Reading stdin can't be
// interrupted, so it doesn't wait for the reader on cancel.
func injectInput(ctx context.Context, sim *uart.Sim, r io.Reader) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- sim.InjectFrom(ctx, r)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return err
		}
		// input closed, let the loop drain the FIFO and stop.
		sim.Close()
		<-ctx.Done()
		return ctx.Err()
	}
}

func (h *Host) runLoop(ctx context.Context) error {
	run := func() error { return h.Loop.Run(ctx) }
	var err error
	if h.transport != nil {
		// closing the transport unblocks a read waiting in the middle of a mark.
		err = fx.RunWithContextCloser(ctx, h.transport, run)
	} else {
		err = run()
	}
	stats := h.Loop.Stats()
	glog.Infof("echo loop stopped: %d bytes, %d lines, %d overflows, %d framing errors",
		stats.Bytes, stats.Lines, stats.Overflows, stats.FramingErrors)
	if rt, ok := h.Loop.Transport.(*uart.Recovering); ok {
		glog.Infof("receiver recovered %d overruns, %d framing errors", rt.Overruns(), rt.FramingErrors())
	}
	if err == io.EOF {
		return nil
	}
	return err
}

// logObserver logs lines and receive errors.
type logObserver struct{}

func (logObserver) LineEchoed(line []byte) {
	glog.V(1).Infof("echoed %q", line)
}

func (logObserver) LineDropped(line []byte) {
	glog.V(1).Infof("dropped %d bytes: %q", len(line), line)
}

func (logObserver) ReceiveError(err error) {
	glog.V(1).Infof("receive error: %v", err)
}

// Runnables returns what to run for the host.
func (h *Host) Runnables() []fx.Runnable {
	return h.runnables
}

// Close releases the transport.
func (h *Host) Close() error {
	var errs fx.AggregatedError
	for _, c := range h.closers {
		errs.Add(c.Close())
	}
	h.closers = nil
	return errs.Aggregate()
}

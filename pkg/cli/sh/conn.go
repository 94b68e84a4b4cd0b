package sh

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/net/websocket"
)

// LineBacklog is the number of received lines kept until consumed.
const LineBacklog = 64

// Conn is a connection to an echo host.
type Conn struct {
	Name string

	rw      io.ReadWriteCloser
	lines   chan string
	done    chan struct{}
	err     error
	sent    uint64
	recvd   uint64
	dropped uint64
}

// Dial connects to target, either a websocket URL or a serial device.
func Dial(target string) (*Conn, error) {
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		origin := "http://localhost/"
		ws, err := websocket.Dial(target, "", origin)
		if err != nil {
			return nil, err
		}
		ws.PayloadType = websocket.BinaryFrame
		return NewConn(target, ws), nil
	}
	rw, err := openDevice(target)
	if err != nil {
		return nil, err
	}
	return NewConn(target, rw), nil
}

// NewConn creates a Conn over rw and starts receiving lines.
func NewConn(name string, rw io.ReadWriteCloser) *Conn {
	c := &Conn{
		Name:  name,
		rw:    rw,
		lines: make(chan string, LineBacklog),
		done:  make(chan struct{}),
	}
	go c.receive()
	return c
}

// receive splits the incoming stream into lines terminated by \r\n.
func (c *Conn) receive() {
	defer close(c.done)
	scanner := bufio.NewScanner(c.rw)
	for scanner.Scan() {
		atomic.AddUint64(&c.recvd, 1)
		select {
		case c.lines <- scanner.Text():
		default:
			atomic.AddUint64(&c.dropped, 1)
		}
	}
	c.err = scanner.Err()
}

// Lines returns the channel of received lines.
func (c *Conn) Lines() <-chan string {
	return c.lines
}

// Done is closed when the connection stops receiving.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the receive error after Done is closed.
func (c *Conn) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Send writes data to the echo host.
func (c *Conn) Send(data []byte) error {
	n, err := c.rw.Write(data)
	atomic.AddUint64(&c.sent, uint64(n))
	return err
}

// Stats formats the counters of the connection.
func (c *Conn) Stats() string {
	return fmt.Sprintf("sent %d bytes, received %d lines, %d lines not consumed",
		atomic.LoadUint64(&c.sent), atomic.LoadUint64(&c.recvd), atomic.LoadUint64(&c.dropped))
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.rw.Close()
}

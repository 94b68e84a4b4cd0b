// Package sh provides an ishell backed interactive shell talking to an
// echo host.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartecho/pkg/l1/mqtt"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Target      string
	MQTTURL     string
	Timeout     time.Duration

	Shell *ishell.Shell
	Conn  *Conn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	target     = os.Getenv("UARTECHO_CONNECT")
	mqttURL    = os.Getenv("UARTECHO_MQTT_URL")
	timeout    = time.Second

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&SendCmd,
		&RawCmd,
		&RecvCmd,
		&StatsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&target, "connect", target, "Serial device or websocket URL to connect.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL for discovery.")
	flag.DurationVar(&timeout, "timeout", timeout, "Time to wait for an echo.")
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Target:      target,
		MQTTURL:     mqttURL,
		Timeout:     timeout,

		Shell: ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Connect connects an echo host.
func (s *Shell) Connect(target string) error {
	conn, err := Dial(target)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", target))
	return nil
}

// Disconnect disconnects current echo host.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// PrintLines prints received lines. It waits up to Timeout for the
// first line if wait is set and nothing is pending.
func (s *Shell) PrintLines(c *ishell.Context, wait bool) {
	lines := s.Conn.Lines()
	var received []string
	for {
		select {
		case line := <-lines:
			received = append(received, line)
			continue
		default:
		}
		break
	}
	if len(received) == 0 && wait {
		select {
		case line := <-lines:
			received = append(received, line)
		case <-s.Conn.Done():
			if err := s.Conn.Err(); err != nil {
				c.Err(err)
			} else {
				c.Err(fmt.Errorf("connection closed"))
			}
			return
		case <-time.After(s.Timeout):
		}
	}
	if s.OutputJSON {
		if received == nil {
			received = []string{}
		}
		out, err := json.Marshal(received)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	if len(received) == 0 && wait {
		c.Println("no echo")
	}
	for _, line := range received {
		c.Printf("< %q\n", line)
	}
}

// DiscoverHosts collects metadata of online echo hosts from the MQTT broker.
func (s *Shell) DiscoverHosts() (map[string]mqtt.HostMeta, error) {
	if s.MQTTURL == "" {
		return nil, fmt.Errorf("MQTT broker URL not specified")
	}
	mon, err := mqtt.NewMonitor(s.MQTTURL)
	if err != nil {
		return nil, err
	}
	var lock sync.Mutex
	hosts := make(map[string]mqtt.HostMeta)
	mon.OnMeta = func(hostID string, meta *mqtt.HostMeta) {
		lock.Lock()
		defer lock.Unlock()
		if meta == nil {
			delete(hosts, hostID)
			return
		}
		hosts[hostID] = *meta
	}
	mon.Subscribe()
	token := mon.Queue.Connect()
	if !token.WaitTimeout(s.Timeout) {
		mon.Queue.Close()
		return nil, fmt.Errorf("connect %s timeout", s.MQTTURL)
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	// retained metadata arrives right after subscribing.
	time.Sleep(s.Timeout)
	mon.Queue.Close()
	lock.Lock()
	defer lock.Unlock()
	return hosts, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Target != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Target)
		}
		if err := s.Connect(s.Target); err != nil {
			log.Fatalf("connect %q failed: %v", s.Target, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd lists echo hosts registered on the MQTT broker.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			hosts, err := s.DiscoverHosts()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(hosts)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(hosts) == 0 {
				c.Println("No echo hosts found")
				return
			}
			ids := make([]string, 0, len(hosts))
			for id := range hosts {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				meta := hosts[id]
				c.Printf("%s: %s %s", id, meta.Transport, meta.Device)
				if meta.Description != "" {
					c.Printf(" (%s)", meta.Description)
				}
				c.Println()
			}
		},
	}

	// ConnectCmd connects an echo host.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "DEVICE|ws://HOST:PORT/echo",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("device or websocket URL expected"))
				return
			}
			if err := ShellFrom(c).Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current echo host.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// SendCmd sends a line and prints the echo.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			line := strings.Join(c.Args, " ")
			if err := s.Conn.Send([]byte(line + "\n")); err != nil {
				c.Err(err)
				return
			}
			// empty lines are not echoed.
			s.PrintLines(c, line != "")
		}),
	}

	// RawCmd sends bytes as is.
	RawCmd = ishell.Cmd{
		Name:    "raw",
		Aliases: []string{"r"},
		Help:    "HEX...",
		Func: MustBeConnected(func(c *ishell.Context) {
			data, err := ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Conn.Send(data); err != nil {
				c.Err(err)
			}
		}),
	}

	// RecvCmd prints received lines.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"rx"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			ShellFrom(c).PrintLines(c, true)
		}),
	}

	// StatsCmd prints connection counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			c.Println(ShellFrom(c).Conn.Stats())
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}

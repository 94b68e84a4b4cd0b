// Package env assembles an echo host from flags and environment variables.
package env

import (
	"flag"
	"io"
	"os"
	"time"
)

// Transport names.
const (
	TransportSerial = "serial"
	TransportSim    = "sim"
	TransportNone   = "none"
)

// Config provides options to set up an echo host.
type Config struct {
	// ID identifies the host in MQTT topics.
	ID string
	// Transport is one of serial, sim or none.
	Transport string
	// Device is the tty used by the serial transport.
	Device string
	// Framing is the framing error policy: substitute or surface.
	Framing string
	// PollInterval is the idle time between polls for a byte.
	PollInterval time.Duration
	// Listen is the address of the websocket echo endpoint, empty to disable.
	Listen string
	// MQTTBrokerURL specifies the MQTT broker to publish events to,
	// e.g. mqtt://host:port/topic-prefix, empty to disable.
	MQTTBrokerURL string

	// SimInput and SimOutput are the line side of the sim transport,
	// stdin and stdout when nil.
	SimInput  io.Reader
	SimOutput io.Writer
}

var defaultConfig = Config{
	Transport:    TransportSerial,
	Device:       "/dev/ttyUSB0",
	Framing:      "substitute",
	PollInterval: 200 * time.Microsecond,
}

func init() {
	if val := os.Getenv("UARTECHO_TRANSPORT"); val != "" {
		defaultConfig.Transport = val
	}
	if val := os.Getenv("UARTECHO_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("UARTECHO_FRAMING"); val != "" {
		defaultConfig.Framing = val
	}
	if val := os.Getenv("UARTECHO_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("UARTECHO_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("UARTECHO_ID"); val != "" {
		defaultConfig.ID = val
	} else {
		defaultConfig.ID = MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Host ID used in MQTT topics")
	flag.StringVar(&defaultConfig.Transport, "transport", defaultConfig.Transport, "Transport: serial, sim or none")
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device")
	flag.StringVar(&defaultConfig.Framing, "framing", defaultConfig.Framing, "Framing error policy: substitute or surface")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Idle time between polls")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Websocket echo listen address")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

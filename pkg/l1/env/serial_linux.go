//go:build linux

package env

import (
	"io"

	"github.com/robotalks/uartecho/pkg/l0/uart/serial"
)

func openSerial(device string, markErrors bool) (io.ReadWriteCloser, error) {
	return serial.Open(serial.Config{Device: device, MarkErrors: markErrors})
}

//go:build linux

package sh

import (
	"io"

	"github.com/robotalks/uartecho/pkg/l0/uart/serial"
)

func openDevice(device string) (io.ReadWriteCloser, error) {
	return serial.Open(serial.Config{Device: device})
}

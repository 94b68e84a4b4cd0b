//go:build linux

// Package serial opens a Linux tty as a raw 9600 8N1 link.
package serial

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Config holds parameters for opening a serial port.
// The line is always 9600 baud, 8 data bits, no parity, 1 stop bit
// without flow control.
type Config struct {
	Device string
	// MarkErrors delivers bytes with framing errors as 0xff 0x00 X
	// (see uart.MarkedReceiver). Otherwise the kernel replaces them by 0x00.
	MarkErrors bool
}

// Port is an opened tty. Read blocks until data arrives and is
// unblocked by Close.
type Port struct {
	file *os.File
}

// Open opens and configures the tty.
func Open(cfg Config) (*Port, error) {
	fd, err := unix.Open(cfg.Device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	if err := setRaw(fd, cfg.MarkErrors); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("configure %s: %w", cfg.Device, err)
	}
	// fd stays non-blocking, os.File uses the runtime poller then.
	return &Port{file: os.NewFile(uintptr(fd), cfg.Device)}, nil
}

func setRaw(fd int, markErrors bool) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	termios.Iflag |= unix.INPCK
	if markErrors {
		termios.Iflag |= unix.PARMRK
	}
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS | unix.CBAUD
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | unix.B9600
	termios.Ispeed, termios.Ospeed = unix.B9600, unix.B9600
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, unix.TCSETS, termios)
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.file.Name()
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	return p.file.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.file.Close()
}

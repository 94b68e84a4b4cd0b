//go:build !linux

package sh

import (
	"fmt"
	"io"
	"runtime"
)

func openDevice(device string) (io.ReadWriteCloser, error) {
	return nil, fmt.Errorf("serial devices are not supported on %s", runtime.GOOS)
}

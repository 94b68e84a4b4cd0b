//go:build !linux

package env

import (
	"fmt"
	"io"
	"runtime"
)

func openSerial(string, bool) (io.ReadWriteCloser, error) {
	return nil, fmt.Errorf("serial transport is not supported on %s", runtime.GOOS)
}

//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"errors"
	"os"
)

func readSecretNoEcho(_ *os.File) ([]byte, error) {
	return nil, errors.New("password prompt is not supported on this platform")
}

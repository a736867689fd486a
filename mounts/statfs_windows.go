//go:build windows

package mounts

import "errors"

var errStatfsUnsupported = errors.New("filesystem statistics not supported on this platform")

func usedBytes(path string) (uint64, error) {
	return 0, errStatfsUnsupported
}

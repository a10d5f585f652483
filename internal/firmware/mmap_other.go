//go:build !unix

package firmware

import (
	"errors"
	"os"
)

var errMmapUnsupported = errors.New("mmap not supported on this platform")

func mapFile(_ *os.File, _ int) ([]byte, error) {
	return nil, errMmapUnsupported
}

func unmapFile(_ []byte) error {
	return nil
}

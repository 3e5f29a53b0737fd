//go:build !unix

package storage

import (
	"io"
	"os"
)

// mapRegion reads [offset, offset+size) of f into memory.
func mapRegion(f *os.File, offset, size int64) ([]byte, func() error, error) {
	b := make([]byte, size)
	if _, err := f.ReadAt(b, offset); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return b, func() error { return nil }, nil
}

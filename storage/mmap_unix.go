//go:build unix

package storage

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapRegion maps [offset, offset+size) of f read-only. The mapping starts at
// the page boundary below offset; the returned slice starts at offset.
func mapRegion(f *os.File, offset, size int64) ([]byte, func() error, error) {
	page := int64(unix.Getpagesize())
	base := offset - offset%page
	skip := offset - base
	mem, err := unix.Mmap(int(f.Fd()), base, int(skip+size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		if errors.Is(err, unix.ENOMEM) {
			return nil, nil, fmt.Errorf("%w: mapping %d bytes: %v", ErrOutOfMemory, size, err)
		}
		return nil, nil, fmt.Errorf("mmap %s: %w", f.Name(), err)
	}
	release := func() error {
		return unix.Munmap(mem)
	}
	return mem[skip : skip+size : skip+size], release, nil
}

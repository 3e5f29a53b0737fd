/*
Package storage acquires font binaries from labelled storage regions.

Regions are described by a partition table in the style of ESP-IDF, with one
partition per line:

	# Name,   Type, SubType, Offset,  Size
	nvs,      data, nvs,     0x9000,  0x6000
	font_14,  data, fat,     0x10000, 256K

The partition table refers to an image file holding all partitions, the way a
flash chip holds them on a device. Map memory-maps a single partition (on
platforms supporting it) and returns a Mapping which must be closed exactly
once.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'd2font'
func tracer() tracing.Trace {
	return tracing.Select("d2font")
}

var (
	// ErrNotFound is returned if no partition carries the requested label.
	ErrNotFound = errors.New("storage: partition not found")
	// ErrOutOfMemory is returned if the system refuses to map a partition
	// for lack of memory or address space.
	ErrOutOfMemory = errors.New("storage: out of memory")
)

// Mapping gives access to the bytes of a mapped region. Bytes must not be
// used after Close.
type Mapping interface {
	Bytes() []byte
	Close() error
}

// Image is a partition table over an image file.
type Image struct {
	Path       string
	Partitions []Partition
}

// Open reads a partition table from tablePath and binds it to the image file
// at imagePath. Partitions must lie within the image file.
func Open(tablePath, imagePath string) (*Image, error) {
	f, err := os.Open(tablePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	parts, err := ParsePartitionTable(f)
	if err != nil {
		return nil, fmt.Errorf("partition table %s: %w", tablePath, err)
	}
	fi, err := os.Stat(imagePath)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if !fits(p, fi.Size()) {
			return nil, fmt.Errorf("partition %q at %#x of %d bytes exceeds image %s of %d bytes",
				p.Label, p.Offset, p.Size, imagePath, fi.Size())
		}
	}
	tracer().Debugf("image %s has %d partitions", imagePath, len(parts))
	return &Image{Path: imagePath, Partitions: parts}, nil
}

// Find returns the first data partition with the given label.
func (img *Image) Find(label string) (Partition, bool) {
	for _, p := range img.Partitions {
		if p.Label == label && p.Type == TypeData {
			return p, true
		}
	}
	return Partition{}, false
}

// Map maps the data partition with the given label.
// It returns ErrNotFound if there is no such partition.
func (img *Image) Map(label string) (Mapping, error) {
	p, ok := img.Find(label)
	if !ok {
		tracer().Errorf("partition %q not found", label)
		return nil, fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	f, err := os.Open(img.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// the image may have shrunk since Open; mapping beyond its end faults on access
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fits(p, fi.Size()) {
		tracer().Errorf("partition %q no longer fits image %s", label, img.Path)
		return nil, fmt.Errorf("partition %q at %#x of %d bytes exceeds image %s of %d bytes",
			label, p.Offset, p.Size, img.Path, fi.Size())
	}
	b, release, err := mapRegion(f, p.Offset, p.Size)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("mapped partition %q, %d bytes at %#x", label, p.Size, p.Offset)
	return &region{label: label, b: b, release: release}, nil
}

// fits is true if p lies within an image of the given size.
func fits(p Partition, size int64) bool {
	return p.Offset >= 0 && p.Size >= 0 && p.Size <= size && p.Offset <= size-p.Size
}

// region is a mapped partition.
type region struct {
	label   string
	b       []byte
	release func() error
	once    sync.Once
}

func (r *region) Bytes() []byte {
	return r.b
}

// Close releases the mapping. Calls after the first one do nothing.
func (r *region) Close() (err error) {
	r.once.Do(func() {
		tracer().Debugf("releasing partition %q", r.label)
		r.b = nil
		err = r.release()
	})
	return
}

// Bytes wraps a byte slice as a Mapping, e.g. for fonts compiled into a
// program. Closing it has no effect besides dropping the reference.
func Bytes(b []byte) Mapping {
	return &region{label: "<memory>", b: b, release: func() error { return nil }}
}

package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// PartitionType is the type column of a partition table.
type PartitionType string

const (
	TypeApp  PartitionType = "app"
	TypeData PartitionType = "data"
)

// Partition is one entry of a partition table.
type Partition struct {
	Label   string
	Type    PartitionType
	SubType string
	Offset  int64
	Size    int64
}

// ParsePartitionTable reads a partition table in CSV format. Lines starting
// with '#' are comments. Offsets and sizes may be decimal, hexadecimal (0x…)
// or carry a K or M suffix. An empty offset places the partition right after
// the previous one.
func ParsePartitionTable(r io.Reader) ([]Partition, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var parts []Partition
	var next int64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: expected 5 columns, have %d", line, len(rec))
		}
		p := Partition{
			Label:   strings.TrimSpace(rec[0]),
			Type:    PartitionType(strings.TrimSpace(rec[1])),
			SubType: strings.TrimSpace(rec[2]),
		}
		if p.Offset, err = parseSize(rec[3], next); err != nil {
			return nil, fmt.Errorf("line %d: offset: %w", line, err)
		}
		if p.Size, err = parseSize(rec[4], -1); err != nil || p.Size <= 0 {
			return nil, fmt.Errorf("line %d: invalid size %q", line, rec[4])
		}
		if p.Offset > math.MaxInt64-p.Size {
			return nil, fmt.Errorf("line %d: partition %q exceeds the address range", line, p.Label)
		}
		if p.Label == "" {
			return nil, fmt.Errorf("line %d: partition without label", line)
		}
		next = p.Offset + p.Size
		parts = append(parts, p)
	}
	return parts, nil
}

// parseSize parses "4096", "0x1000", "4K" or "1M". An empty field yields dflt,
// unless dflt is negative.
func parseSize(field string, dflt int64) (int64, error) {
	s := strings.TrimSpace(field)
	if s == "" {
		if dflt < 0 {
			return 0, errors.New("missing value")
		}
		return dflt, nil
	}
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		mult, s = 1024, s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		mult, s = 1024*1024, s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	if n > math.MaxInt64/mult {
		return 0, fmt.Errorf("value %s too large", field)
	}
	return n * mult, nil
}

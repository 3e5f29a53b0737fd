package d2

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// IntegrityScheme is the algorithm protecting header and descriptor block.
// Two schemes exist; a container states which one it uses in Header.Version.
// The schemes cannot be told apart from the bytes alone, therefore they are
// never auto-detected.
type IntegrityScheme int

const (
	CRC32  IntegrityScheme = iota // 4 bytes, IEEE polynomial, little-endian
	SHA256                        // 32 bytes
)

// Container versions and the integrity scheme they imply.
const (
	VersionLegacy = 0 // written by early encoders, CRC32
	VersionCRC32  = 1
	VersionSHA256 = 2
)

// SchemeForVersion returns the integrity scheme of a container version.
func SchemeForVersion(version uint32) (IntegrityScheme, bool) {
	switch version {
	case VersionLegacy, VersionCRC32:
		return CRC32, true
	case VersionSHA256:
		return SHA256, true
	}
	return CRC32, false
}

// Size is the number of bytes the integrity field occupies.
func (s IntegrityScheme) Size() int {
	if s == SHA256 {
		return sha256.Size
	}
	return crc32.Size
}

// Sum computes the integrity field for data.
func (s IntegrityScheme) Sum(data []byte) []byte {
	if s == SHA256 {
		sum := sha256.Sum256(data)
		return sum[:]
	}
	return binary.LittleEndian.AppendUint32(nil, crc32.ChecksumIEEE(data))
}

func (s IntegrityScheme) verify(data, stored []byte) bool {
	return bytes.Equal(s.Sum(data), stored)
}

func (s IntegrityScheme) String() string {
	switch s {
	case CRC32:
		return "CRC32"
	case SHA256:
		return "SHA-256"
	}
	return fmt.Sprintf("IntegrityScheme(%d)", int(s))
}

package ultrasonic

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Canonical encoding helpers. Every identifier-producing type in this
// package serializes through these primitives so that two independent
// implementations of the same byte layout always agree (spec §4.7, P1).

// appendUint16LE appends a little-endian uint16.
func appendUint16LE(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

// appendUint64LE appends a little-endian uint64.
func appendUint64LE(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// appendInt64LE appends a little-endian, two's-complement int64.
func appendInt64LE(dst []byte, v int64) []byte {
	return appendUint64LE(dst, uint64(v))
}

// appendSeqLen appends the 16-bit little-endian length prefix used ahead of
// every encoded sequence, erroring if the sequence exceeds 2^16-1 elements.
func appendSeqLen(dst []byte, n int) ([]byte, error) {
	if n > 0xFFFF {
		return dst, ErrOverLimit
	}
	return appendUint16LE(dst, uint16(n)), nil
}

// appendOption appends the 0x00/0x01-prefixed encoding of an optional value;
// body is only appended when present is true.
func appendOption(dst []byte, present bool, body []byte) []byte {
	if !present {
		return append(dst, 0x00)
	}
	dst = append(dst, 0x01)
	return append(dst, body...)
}

// encodeOptionLibSite encodes Option<LibSite> per §4.7.
func encodeOptionLibSite(s *LibSite) []byte {
	if s == nil {
		return []byte{0x00}
	}
	return appendOption(nil, true, s.Encode())
}

// readUint16LE reads a little-endian uint16, returning the bytes consumed.
func readUint16LE(b []byte) (uint16, int, error) {
	if len(b) < 2 {
		return 0, 0, fmt.Errorf("%w: truncated uint16", ErrDataIntegrity)
	}
	return binary.LittleEndian.Uint16(b), 2, nil
}

// readUint64LE reads a little-endian uint64, returning the bytes consumed.
func readUint64LE(b []byte) (uint64, int, error) {
	if len(b) < 8 {
		return 0, 0, fmt.Errorf("%w: truncated uint64", ErrDataIntegrity)
	}
	return binary.LittleEndian.Uint64(b), 8, nil
}

// readInt64LE reads a little-endian, two's-complement int64.
func readInt64LE(b []byte) (int64, int, error) {
	v, n, err := readUint64LE(b)
	return int64(v), n, err
}

// readSeqLen reads the 16-bit little-endian sequence-length prefix.
func readSeqLen(b []byte) (int, int, error) {
	v, n, err := readUint16LE(b)
	if err != nil {
		return 0, 0, err
	}
	return int(v), n, nil
}

// readString reads a length-prefixed UTF-8 string.
func readString(b []byte) (string, int, error) {
	n, consumed, err := readSeqLen(b)
	if err != nil {
		return "", 0, err
	}
	if len(b) < consumed+n {
		return "", 0, fmt.Errorf("%w: truncated string", ErrDataIntegrity)
	}
	return string(b[consumed : consumed+n]), consumed + n, nil
}

// readOption reads the 0x00/0x01 discriminator of an Option<T>, returning
// whether it is present and how many bytes the discriminator itself
// consumed (the caller decodes the body, if any, starting right after).
func readOption(b []byte) (present bool, consumed int, err error) {
	if len(b) < 1 {
		return false, 0, fmt.Errorf("%w: truncated option tag", ErrDataIntegrity)
	}
	switch b[0] {
	case 0x00:
		return false, 1, nil
	case 0x01:
		return true, 1, nil
	default:
		return false, 0, fmt.Errorf("%w: option tag %#x", ErrInvalidTag, b[0])
	}
}

// decodeOptionLibSite decodes the Option<LibSite> layout written by
// encodeOptionLibSite.
func decodeOptionLibSite(b []byte) (*LibSite, int, error) {
	present, consumed, err := readOption(b)
	if err != nil {
		return nil, 0, err
	}
	if !present {
		return nil, consumed, nil
	}
	site, n, err := DecodeLibSite(b[consumed:])
	if err != nil {
		return nil, 0, err
	}
	return &site, consumed + n, nil
}

// taggedID computes the tagged-SHA-256 identifier of data under tag: the
// construction primes the hash with SHA-256(tag) concatenated with itself,
// then absorbs data and finalizes. This yields domain separation between
// id types without needing anything beyond a single SHA-256 primitive
// (spec §4.2, §9).
func taggedID(tag string, data []byte) [32]byte {
	tagDigest := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(tagDigest[:])
	h.Write(tagDigest[:])
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Tag strings for each commitment-bearing id type (spec §4.2).
const (
	tagOpid       = "urn:ubideco:sonic:opid#2024-11-16"
	tagContractID = "urn:ubideco:sonic:contract#2024-11-16"
	tagCodexID    = "urn:ubideco:sonic:codex#2024-11-16"
	tagCallID     = "urn:ubideco:sonic:call#2024-11-16"
	tagAccessID   = "urn:ubideco:sonic:access#2024-11-16"
	tagGenesisID  = "urn:ubideco:sonic:genesis#2024-11-16"
)

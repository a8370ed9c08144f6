package ultrasonic

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// baid64HRI is the human-readable identifier prefix used to disambiguate
// UltraSONIC ids from other Baid64-encoded identifiers in the wider
// ecosystem. It is informational only: per the reference encoding rules used
// here (PREFIX=false), it is never embedded in the encoded text itself.
const baid64HRI = "sonic"

// baid64ChunkSize groups the base64url alphabet into human-readable chunks,
// mirroring the reference implementation's CHUNKING=true behavior.
const baid64ChunkSize = 8

// encodeBaid64 renders a 32-byte id as chunked, unpadded base64url text.
func encodeBaid64(b [32]byte) string {
	raw := base64.RawURLEncoding.EncodeToString(b[:])
	var sb strings.Builder
	for i := 0; i < len(raw); i += baid64ChunkSize {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := i + baid64ChunkSize
		if end > len(raw) {
			end = len(raw)
		}
		sb.WriteString(raw[i:end])
	}
	return sb.String()
}

// decodeBaid64 parses text produced by encodeBaid64 back into 32 bytes.
func decodeBaid64(s string) ([32]byte, error) {
	var out [32]byte
	raw := strings.ReplaceAll(s, "-", "")
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return out, fmt.Errorf("%w: %q: %v", ErrBadID, s, err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("%w: %q: expected 32 bytes, got %d", ErrBadID, s, len(b))
	}
	copy(out[:], b)
	return out, nil
}

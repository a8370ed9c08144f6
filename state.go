package ultrasonic

import (
	"crypto/sha256"
	"fmt"
)

// MaxArity is the largest number of field elements a StateValue can hold.
const MaxArity = 4

// StateValue is a tagged union of arity 0-4 over FE128. Arities above
// MaxArity are not representable.
type StateValue struct {
	arity uint8
	elems [MaxArity]FE128
}

// NoneValue is the empty state value (arity 0).
func NoneValue() StateValue { return StateValue{} }

// SingleValue builds an arity-1 state value.
func SingleValue(e0 FE128) StateValue {
	return StateValue{arity: 1, elems: [MaxArity]FE128{e0}}
}

// DoubleValue builds an arity-2 state value.
func DoubleValue(e0, e1 FE128) StateValue {
	return StateValue{arity: 2, elems: [MaxArity]FE128{e0, e1}}
}

// ThreeValue builds an arity-3 state value.
func ThreeValue(e0, e1, e2 FE128) StateValue {
	return StateValue{arity: 3, elems: [MaxArity]FE128{e0, e1, e2}}
}

// FourValue builds an arity-4 state value.
func FourValue(e0, e1, e2, e3 FE128) StateValue {
	return StateValue{arity: 4, elems: [MaxArity]FE128{e0, e1, e2, e3}}
}

// Arity returns the number of field elements held, 0-4.
func (v StateValue) Arity() uint8 { return v.arity }

// Get returns the i-th field element, or false if i is out of range for this
// value's arity.
func (v StateValue) Get(i uint8) (FE128, bool) {
	if i >= v.arity {
		return FE128{}, false
	}
	return v.elems[i], true
}

// Encode writes the canonical byte layout: a single-byte arity discriminator
// followed by exactly arity*16 bytes, most-significant field last.
func (v StateValue) Encode() []byte {
	out := make([]byte, 0, 1+int(v.arity)*16)
	out = append(out, v.arity)
	for i := uint8(0); i < v.arity; i++ {
		out = append(out, v.elems[i][:]...)
	}
	return out
}

// DecodeStateValue parses the canonical encoding produced by Encode.
func DecodeStateValue(b []byte) (StateValue, int, error) {
	if len(b) < 1 {
		return StateValue{}, 0, fmt.Errorf("%w: state value truncated", ErrDataIntegrity)
	}
	arity := b[0]
	if arity > MaxArity {
		return StateValue{}, 0, fmt.Errorf("%w: state value arity %d", ErrInvalidTag, arity)
	}
	need := 1 + int(arity)*16
	if len(b) < need {
		return StateValue{}, 0, fmt.Errorf("%w: state value truncated", ErrDataIntegrity)
	}
	var v StateValue
	v.arity = arity
	for i := uint8(0); i < arity; i++ {
		copy(v.elems[i][:], b[1+int(i)*16:1+int(i)*16+16])
	}
	return v, need, nil
}

// AuthToken authorizes spending of a destructible cell: the first 30 bytes of
// a SHA-256 digest.
type AuthToken [30]byte

// NewAuthToken truncates the SHA-256 digest of seed to an AuthToken.
func NewAuthToken(seed []byte) AuthToken {
	digest := sha256.Sum256(seed)
	var tok AuthToken
	copy(tok[:], digest[:30])
	return tok
}

// MaxRawData is the largest number of bytes a RawData payload may hold.
const MaxRawData = 1<<16 - 1

// RawData is an opaque byte buffer attached to immutable cells as a free
// data commitment, bounded to MaxRawData bytes.
type RawData []byte

// NewRawData validates and wraps b as a RawData payload.
func NewRawData(b []byte) (RawData, error) {
	if len(b) > MaxRawData {
		return nil, fmt.Errorf("%w: raw data %d bytes exceeds %d", ErrOverLimit, len(b), MaxRawData)
	}
	return RawData(b), nil
}

// StateCell is a destructible output: state plus the single-use-seal value
// and an optional lock script that must be run before the cell can be spent.
type StateCell struct {
	Data StateValue
	Seal FE128
	Lock *LibSite
}

// Encode writes the canonical byte layout for a StateCell.
func (c StateCell) Encode() []byte {
	out := make([]byte, 0, 64)
	out = append(out, c.Data.Encode()...)
	out = append(out, c.Seal[:]...)
	out = append(out, encodeOptionLibSite(c.Lock)...)
	return out
}

// DecodeStateCell parses the canonical encoding produced by Encode.
func DecodeStateCell(b []byte) (StateCell, int, error) {
	data, n, err := DecodeStateValue(b)
	if err != nil {
		return StateCell{}, 0, err
	}
	off := n

	if len(b) < off+16 {
		return StateCell{}, 0, fmt.Errorf("%w: state cell seal truncated", ErrDataIntegrity)
	}
	var seal FE128
	copy(seal[:], b[off:off+16])
	off += 16

	lock, n, err := decodeOptionLibSite(b[off:])
	if err != nil {
		return StateCell{}, 0, err
	}
	off += n

	return StateCell{Data: data, Seal: seal, Lock: lock}, off, nil
}

// StateData is an immutable output: a value, its spend-authorization token,
// and an optional free-form data commitment.
type StateData struct {
	Value StateValue
	Auth  AuthToken
	Raw   *RawData
}

// Encode writes the canonical byte layout for a StateData record.
func (d StateData) Encode() []byte {
	out := make([]byte, 0, 64)
	out = append(out, d.Value.Encode()...)
	out = append(out, d.Auth[:]...)
	if d.Raw == nil {
		out = append(out, 0x00)
	} else {
		out = append(out, 0x01)
		out = appendUint16LE(out, uint16(len(*d.Raw)))
		out = append(out, (*d.Raw)...)
	}
	return out
}

// DecodeStateData parses the canonical encoding produced by Encode.
func DecodeStateData(b []byte) (StateData, int, error) {
	value, n, err := DecodeStateValue(b)
	if err != nil {
		return StateData{}, 0, err
	}
	off := n

	if len(b) < off+30 {
		return StateData{}, 0, fmt.Errorf("%w: state data auth token truncated", ErrDataIntegrity)
	}
	var auth AuthToken
	copy(auth[:], b[off:off+30])
	off += 30

	present, n, err := readOption(b[off:])
	if err != nil {
		return StateData{}, 0, err
	}
	off += n

	var raw *RawData
	if present {
		length, n, err := readSeqLen(b[off:])
		if err != nil {
			return StateData{}, 0, err
		}
		off += n
		if len(b) < off+length {
			return StateData{}, 0, fmt.Errorf("%w: state data raw payload truncated", ErrDataIntegrity)
		}
		r := RawData(append([]byte(nil), b[off:off+length]...))
		raw = &r
		off += length
	}

	return StateData{Value: value, Auth: auth, Raw: raw}, off, nil
}

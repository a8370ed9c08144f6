// Package ultrasonic implements the UltraSONIC transactional execution layer:
// a contract data model, a capability-gated I/O instruction set extension for
// a zk-friendly register machine (ISA-USONIC), and the commitment scheme that
// binds contract and operation identities to their canonical encodings.
//
// fe128 values are opaque 128-bit residues, compared bit-exactly by the
// USONIC iterator instructions. The modular arithmetic opcodes (FieldInstr)
// reduce them against the codex-selected prime via the minimal base-core
// stand-in this module ships for testing; a production deployment runs
// against the full zk-AluVM base register machine instead (spec §6).
package ultrasonic

import (
	"encoding/hex"

	"github.com/holiman/uint256"
)

// LibNameUltrasonic is the strict-type library name this ISA extension and
// its data types are registered under.
const LibNameUltrasonic = "UltraSONIC"

// FE128 is an opaque 128-bit field residue. The core stores and compares it
// bit-exactly; it never interprets the bytes as an integer.
type FE128 [16]byte

// ZeroFE128 is the all-zero field element, used to clear unused registers.
var ZeroFE128 = FE128{}

// Bytes returns the raw 16-byte representation.
func (e FE128) Bytes() [16]byte { return e }

// String renders the element as a lowercase hex string.
func (e FE128) String() string { return hex.EncodeToString(e[:]) }

// FieldOrderSelector names one of the three field moduli a codex may select
// for the base register machine to operate over.
type FieldOrderSelector uint8

const (
	// FieldCurve25519 selects the Curve25519 scalar field.
	FieldCurve25519 FieldOrderSelector = iota
	// FieldStark selects the STARK-friendly prime.
	FieldStark
	// FieldSecp selects the secp256k1 scalar field.
	FieldSecp
)

func (s FieldOrderSelector) String() string {
	switch s {
	case FieldCurve25519:
		return "curve25519"
	case FieldStark:
		return "stark"
	case FieldSecp:
		return "secp256k1"
	default:
		return "unknown"
	}
}

// Order returns the prime modulus associated with the selector.
func (s FieldOrderSelector) Order() *uint256.Int {
	switch s {
	case FieldCurve25519:
		return FieldOrderCurve25519
	case FieldStark:
		return FieldOrderStark
	case FieldSecp:
		return FieldOrderSecp
	default:
		return nil
	}
}

// The three supported field moduli, reproduced from the reference curve and
// STARK parameters. The minimal base-core stand-in in core.go/instr.go uses
// these to reduce FieldInstr results; the full zk-AluVM register machine
// this module treats as a consumed interface (spec §6) would do the same.
var (
	FieldOrderCurve25519 = uint256.NewInt(0).SetBytes(mustHex(
		"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffed"))
	FieldOrderStark = uint256.NewInt(0).SetBytes(mustHex(
		"0800000000000011000000000000000000000000000000000000000000000001"))
	FieldOrderSecp = uint256.NewInt(0).SetBytes(mustHex(
		"fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"))
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("ultrasonic: invalid field order literal: " + err.Error())
	}
	return b
}

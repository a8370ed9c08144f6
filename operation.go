package ultrasonic

import (
	"fmt"
	"strconv"
	"strings"
)

// CellAddr addresses a single output slot of a prior operation: the
// operation's Opid plus the output's position within that operation's output
// vector (spec §4.2, S4).
type CellAddr struct {
	Opid Opid
	Pos  uint16
}

// Encode writes the canonical byte layout: 32 bytes of Opid followed by a
// little-endian uint16 position.
func (a CellAddr) Encode() []byte {
	out := make([]byte, 0, 34)
	b := a.Opid.Bytes()
	out = append(out, b[:]...)
	out = appendUint16LE(out, a.Pos)
	return out
}

// DecodeCellAddr parses the canonical encoding produced by Encode.
func DecodeCellAddr(b []byte) (CellAddr, int, error) {
	if len(b) < 34 {
		return CellAddr{}, 0, fmt.Errorf("%w: cell address truncated", ErrDataIntegrity)
	}
	var opid [32]byte
	copy(opid[:], b[:32])
	pos, _, err := readUint16LE(b[32:34])
	if err != nil {
		return CellAddr{}, 0, err
	}
	return CellAddr{Opid: OpidFromBytes(opid), Pos: pos}, 34, nil
}

// cellAddrPrefix is the literal prefix every textual CellAddr carries (spec
// §4.2: `"opid:<hex>[/<dec>]"`).
const cellAddrPrefix = "opid:"

// String renders the textual form "opid:<hex>[/<dec>]" consumed by
// ParseCellAddr; the position is always rendered explicitly, even at 0
// (spec §4.2, S4).
func (a CellAddr) String() string {
	return cellAddrPrefix + a.Opid.String() + "/" + strconv.FormatUint(uint64(a.Pos), 10)
}

// ParseCellAddr parses "opid:<hex>[/<dec>]", where <hex> is the Baid64 form
// of the Opid and the optional "/<dec>" position defaults to 0 when absent
// (spec §4.2, S4). It fails with ParseAddrError wrapping ErrMissingSeparator,
// ErrBadID, or ErrBadPos as appropriate.
func ParseCellAddr(s string) (CellAddr, error) {
	if !strings.HasPrefix(s, cellAddrPrefix) {
		return CellAddr{}, &ParseAddrError{Kind: ErrMissingSeparator, Text: s}
	}
	rest := s[len(cellAddrPrefix):]

	opidPart, posPart, hasPos := rest, "", false
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		opidPart, posPart, hasPos = rest[:idx], rest[idx+1:], true
	}

	opid, err := ParseOpid(opidPart)
	if err != nil {
		return CellAddr{}, &ParseAddrError{Kind: ErrBadID, Text: s}
	}

	if !hasPos {
		return CellAddr{Opid: opid, Pos: 0}, nil
	}
	pos, err := strconv.ParseUint(posPart, 10, 16)
	if err != nil {
		return CellAddr{}, &ParseAddrError{Kind: ErrBadPos, Text: s}
	}
	return CellAddr{Opid: opid, Pos: uint16(pos)}, nil
}

// Input spends a destructible cell, supplying the witness value that the
// verifier loads through UI_IR; the cell's sealed Data is not loaded.
type Input struct {
	Addr    CellAddr
	Witness StateValue
}

// Encode writes the canonical byte layout for an Input.
func (in Input) Encode() []byte {
	out := make([]byte, 0, 48)
	out = append(out, in.Addr.Encode()...)
	out = append(out, in.Witness.Encode()...)
	return out
}

// DecodeInput parses the canonical encoding produced by Encode.
func DecodeInput(b []byte) (Input, int, error) {
	addr, n, err := DecodeCellAddr(b)
	if err != nil {
		return Input{}, 0, err
	}
	off := n

	witness, n, err := DecodeStateValue(b[off:])
	if err != nil {
		return Input{}, 0, err
	}
	off += n

	return Input{Addr: addr, Witness: witness}, off, nil
}

// Operation is a single state transition: it spends destructible cells and
// reads immutable cells belonging to a contract, and produces new
// destructible and immutable cells in their place (spec §3, §4.2).
type Operation struct {
	ContractID      ContractId
	CallID          CallId
	Nonce           uint64
	DestructibleIn  []Input
	ImmutableIn     []CellAddr
	DestructibleOut []StateCell
	ImmutableOut    []StateData
}

// Encode writes the canonical byte layout of an Operation (spec §4.7): fixed
// 32-byte ContractID, fixed 32-byte CallID, little-endian Nonce, then the
// four length-prefixed sequences in field order.
func (op Operation) Encode() ([]byte, error) {
	out := make([]byte, 0, 128)
	cid := op.ContractID.Bytes()
	out = append(out, cid[:]...)
	call := op.CallID.Bytes()
	out = append(out, call[:]...)
	out = appendUint64LE(out, op.Nonce)

	var err error
	out, err = appendSeqLen(out, len(op.DestructibleIn))
	if err != nil {
		return nil, err
	}
	for _, in := range op.DestructibleIn {
		out = append(out, in.Encode()...)
	}

	out, err = appendSeqLen(out, len(op.ImmutableIn))
	if err != nil {
		return nil, err
	}
	for _, a := range op.ImmutableIn {
		out = append(out, a.Encode()...)
	}

	out, err = appendSeqLen(out, len(op.DestructibleOut))
	if err != nil {
		return nil, err
	}
	for _, c := range op.DestructibleOut {
		out = append(out, c.Encode()...)
	}

	out, err = appendSeqLen(out, len(op.ImmutableOut))
	if err != nil {
		return nil, err
	}
	for _, d := range op.ImmutableOut {
		out = append(out, d.Encode()...)
	}

	return out, nil
}

// DecodeOperation parses the canonical encoding produced by Encode.
func DecodeOperation(b []byte) (Operation, int, error) {
	if len(b) < 72 {
		return Operation{}, 0, fmt.Errorf("%w: operation header truncated", ErrDataIntegrity)
	}
	var contractID, callID [32]byte
	copy(contractID[:], b[:32])
	copy(callID[:], b[32:64])
	nonce, _, err := readUint64LE(b[64:72])
	if err != nil {
		return Operation{}, 0, err
	}
	off := 72

	inCount, n, err := readSeqLen(b[off:])
	if err != nil {
		return Operation{}, 0, err
	}
	off += n
	destructibleIn := make([]Input, inCount)
	for i := range destructibleIn {
		in, n, err := DecodeInput(b[off:])
		if err != nil {
			return Operation{}, 0, err
		}
		destructibleIn[i] = in
		off += n
	}

	immInCount, n, err := readSeqLen(b[off:])
	if err != nil {
		return Operation{}, 0, err
	}
	off += n
	immutableIn := make([]CellAddr, immInCount)
	for i := range immutableIn {
		addr, n, err := DecodeCellAddr(b[off:])
		if err != nil {
			return Operation{}, 0, err
		}
		immutableIn[i] = addr
		off += n
	}

	outCount, n, err := readSeqLen(b[off:])
	if err != nil {
		return Operation{}, 0, err
	}
	off += n
	destructibleOut := make([]StateCell, outCount)
	for i := range destructibleOut {
		cell, n, err := DecodeStateCell(b[off:])
		if err != nil {
			return Operation{}, 0, err
		}
		destructibleOut[i] = cell
		off += n
	}

	immOutCount, n, err := readSeqLen(b[off:])
	if err != nil {
		return Operation{}, 0, err
	}
	off += n
	immutableOut := make([]StateData, immOutCount)
	for i := range immutableOut {
		data, n, err := DecodeStateData(b[off:])
		if err != nil {
			return Operation{}, 0, err
		}
		immutableOut[i] = data
		off += n
	}

	return Operation{
		ContractID:      ContractIdFromBytes(contractID),
		CallID:          CallIdFromBytes(callID),
		Nonce:           nonce,
		DestructibleIn:  destructibleIn,
		ImmutableIn:     immutableIn,
		DestructibleOut: destructibleOut,
		ImmutableOut:    immutableOut,
	}, off, nil
}

// Opid derives this operation's identifier by tagged-hashing its canonical
// encoding (spec §4.2, P1).
func (op Operation) Opid() (Opid, error) {
	enc, err := op.Encode()
	if err != nil {
		return Opid{}, err
	}
	return Opid(taggedID(tagOpid, enc)), nil
}

// AccessID commits to the ordered addresses this operation reads from or
// consumes, independent of what it produces (spec §3's AccessId).
func (op Operation) AccessID() (AccessId, error) {
	destructibleIn := make([]CellAddr, len(op.DestructibleIn))
	for i, in := range op.DestructibleIn {
		destructibleIn[i] = in.Addr
	}
	return computeAccessID(destructibleIn, op.ImmutableIn)
}

// Genesis is the degenerate, input-less operation that originates a
// contract's initial state. Unlike a regular Operation it carries no
// ContractID of its own (the contract doesn't exist until the genesis is
// committed) and is identified by GenesisId rather than Opid.
type Genesis struct {
	CodexID         CodexId
	Timestamp       int64
	DestructibleOut []StateCell
	ImmutableOut    []StateData
}

// Encode writes the canonical byte layout of a Genesis operation.
func (g Genesis) Encode() ([]byte, error) {
	out := make([]byte, 0, 96)
	cid := g.CodexID.Bytes()
	out = append(out, cid[:]...)
	out = appendInt64LE(out, g.Timestamp)

	var err error
	out, err = appendSeqLen(out, len(g.DestructibleOut))
	if err != nil {
		return nil, err
	}
	for _, c := range g.DestructibleOut {
		out = append(out, c.Encode()...)
	}

	out, err = appendSeqLen(out, len(g.ImmutableOut))
	if err != nil {
		return nil, err
	}
	for _, d := range g.ImmutableOut {
		out = append(out, d.Encode()...)
	}

	return out, nil
}

// DecodeGenesis parses the canonical encoding produced by Encode.
func DecodeGenesis(b []byte) (Genesis, int, error) {
	if len(b) < 40 {
		return Genesis{}, 0, fmt.Errorf("%w: genesis header truncated", ErrDataIntegrity)
	}
	var codexID [32]byte
	copy(codexID[:], b[:32])
	timestamp, _, err := readInt64LE(b[32:40])
	if err != nil {
		return Genesis{}, 0, err
	}
	off := 40

	outCount, n, err := readSeqLen(b[off:])
	if err != nil {
		return Genesis{}, 0, err
	}
	off += n
	destructibleOut := make([]StateCell, outCount)
	for i := range destructibleOut {
		cell, n, err := DecodeStateCell(b[off:])
		if err != nil {
			return Genesis{}, 0, err
		}
		destructibleOut[i] = cell
		off += n
	}

	immOutCount, n, err := readSeqLen(b[off:])
	if err != nil {
		return Genesis{}, 0, err
	}
	off += n
	immutableOut := make([]StateData, immOutCount)
	for i := range immutableOut {
		data, n, err := DecodeStateData(b[off:])
		if err != nil {
			return Genesis{}, 0, err
		}
		immutableOut[i] = data
		off += n
	}

	return Genesis{
		CodexID:         CodexIdFromBytes(codexID),
		Timestamp:       timestamp,
		DestructibleOut: destructibleOut,
		ImmutableOut:    immutableOut,
	}, off, nil
}

// GenesisId derives this genesis operation's identifier.
func (g Genesis) GenesisId() (GenesisId, error) {
	enc, err := g.Encode()
	if err != nil {
		return GenesisId{}, err
	}
	return GenesisId(taggedID(tagGenesisID, enc)), nil
}

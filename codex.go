package ultrasonic

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LibId identifies an assembled library by the tagged hash of its bytecode.
type LibId [32]byte

func LibIdFromBytes(b [32]byte) LibId { return LibId(b) }
func (id LibId) Bytes() [32]byte      { return [32]byte(id) }
func (id LibId) String() string       { return encodeBaid64([32]byte(id)) }

// ParseLibId parses the Baid64 textual form of a LibId.
func ParseLibId(s string) (LibId, error) {
	b, err := decodeBaid64(s)
	if err != nil {
		return LibId{}, err
	}
	return LibId(b), nil
}

// LibSite is an entry point inside a library: the library's id plus a byte
// offset at which execution begins.
type LibSite struct {
	LibID  LibId
	Offset uint16
}

// Encode writes the canonical byte layout for a LibSite.
func (s LibSite) Encode() []byte {
	out := make([]byte, 0, 34)
	b := s.LibID.Bytes()
	out = append(out, b[:]...)
	out = appendUint16LE(out, s.Offset)
	return out
}

// DecodeLibSite parses the canonical encoding produced by Encode.
func DecodeLibSite(b []byte) (LibSite, int, error) {
	if len(b) < 34 {
		return LibSite{}, 0, fmt.Errorf("%w: lib site truncated", ErrDataIntegrity)
	}
	var libID [32]byte
	copy(libID[:], b[:32])
	offset, _, err := readUint16LE(b[32:34])
	if err != nil {
		return LibSite{}, 0, err
	}
	return LibSite{LibID: LibIdFromBytes(libID), Offset: offset}, 34, nil
}

// LibRepo resolves a LibId to its assembled bytecode. The core never owns
// library storage; it is always supplied by the embedder (spec §6).
type LibRepo interface {
	Lookup(id LibId) (*Lib, bool)
}

// MapLibRepo is a simple in-memory LibRepo backed by a map, suitable for
// tests and small embedders.
type MapLibRepo map[LibId]*Lib

// Lookup implements LibRepo.
func (r MapLibRepo) Lookup(id LibId) (*Lib, bool) {
	lib, ok := r[id]
	return lib, ok
}

// Codex is a contract's static logic: the verifier programs keyed by call,
// the field over which its register machine operates, and bookkeeping
// metadata (spec §4.3).
type Codex struct {
	Name               string
	Developer          string
	FieldOrderSelector FieldOrderSelector
	Verifiers          map[CallId]LibSite
	Timestamp          int64
	Version            Ffv
}

// Encode writes the canonical byte layout of a Codex. Verifiers are encoded
// in a deterministic order (ascending CallId bytes) so that two codices with
// the same logical content always commit to the same id.
func (c Codex) Encode() ([]byte, error) {
	out := make([]byte, 0, 128)
	out = appendUint16LE(out, uint16(c.Version))

	var err error
	out, err = appendSeqLen(out, len(c.Name))
	if err != nil {
		return nil, err
	}
	out = append(out, c.Name...)

	out, err = appendSeqLen(out, len(c.Developer))
	if err != nil {
		return nil, err
	}
	out = append(out, c.Developer...)

	out = append(out, byte(c.FieldOrderSelector))

	ids := make([]CallId, 0, len(c.Verifiers))
	for id := range c.Verifiers {
		ids = append(ids, id)
	}
	sortCallIds(ids)

	out, err = appendSeqLen(out, len(ids))
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		b := id.Bytes()
		out = append(out, b[:]...)
		out = append(out, c.Verifiers[id].Encode()...)
	}

	out = appendInt64LE(out, c.Timestamp)
	return out, nil
}

// DecodeCodex parses the canonical encoding produced by Encode.
func DecodeCodex(b []byte) (Codex, int, error) {
	version, n, err := readUint16LE(b)
	if err != nil {
		return Codex{}, 0, err
	}
	off := n

	name, n, err := readString(b[off:])
	if err != nil {
		return Codex{}, 0, err
	}
	off += n

	developer, n, err := readString(b[off:])
	if err != nil {
		return Codex{}, 0, err
	}
	off += n

	if len(b) < off+1 {
		return Codex{}, 0, fmt.Errorf("%w: codex truncated before field order", ErrDataIntegrity)
	}
	selector := FieldOrderSelector(b[off])
	if selector > FieldSecp {
		return Codex{}, 0, fmt.Errorf("%w: field order selector %d", ErrInvalidTag, selector)
	}
	off++

	count, n, err := readSeqLen(b[off:])
	if err != nil {
		return Codex{}, 0, err
	}
	off += n

	verifiers := make(map[CallId]LibSite, count)
	for i := 0; i < count; i++ {
		if len(b) < off+32 {
			return Codex{}, 0, fmt.Errorf("%w: codex verifier id truncated", ErrDataIntegrity)
		}
		var callID [32]byte
		copy(callID[:], b[off:off+32])
		off += 32

		site, n, err := DecodeLibSite(b[off:])
		if err != nil {
			return Codex{}, 0, err
		}
		off += n
		verifiers[CallIdFromBytes(callID)] = site
	}

	timestamp, n, err := readInt64LE(b[off:])
	if err != nil {
		return Codex{}, 0, err
	}
	off += n

	return Codex{
		Name:               name,
		Developer:          developer,
		FieldOrderSelector: selector,
		Verifiers:          verifiers,
		Timestamp:          timestamp,
		Version:            Ffv(version),
	}, off, nil
}

// sortCallIds sorts ids in ascending byte order in place; small N so a plain
// insertion sort keeps this file free of an extra sort.Slice closure alloc.
func sortCallIds(ids []CallId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && lessCallId(ids[j], ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func lessCallId(a, b CallId) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// CodexId derives this codex's identifier by tagged-hashing its canonical
// encoding.
func (c Codex) CodexId() (CodexId, error) {
	enc, err := c.Encode()
	if err != nil {
		return CodexId{}, err
	}
	return CodexId(taggedID(tagCodexID, enc)), nil
}

// CallError is the error family returned from Codex.Verify (spec §6).
type CallError struct {
	Op   string
	Addr *CellAddr
	Call *CallId
	Err  error
}

func (e *CallError) Error() string {
	switch {
	case e.Addr != nil:
		return fmt.Sprintf("ultrasonic: verify %s: %v (%s)", e.Op, e.Err, e.Addr)
	case e.Call != nil:
		return fmt.Sprintf("ultrasonic: verify %s: %v (%s)", e.Op, e.Err, e.Call)
	default:
		return fmt.Sprintf("ultrasonic: verify %s: %v", e.Op, e.Err)
	}
}

func (e *CallError) Unwrap() error { return e.Err }

// Verify resolves op's inputs against memory, builds a VmContext, looks up
// the call's verifier entry point, runs the register machine to completion,
// and accepts iff the machine halted with CK = StatusOk (spec §4.5, §6, P8).
func (c Codex) Verify(op *Operation, memory *Memory, repo LibRepo) error {
	log := logrus.WithFields(logrus.Fields{
		"contract_id": op.ContractID.String(),
		"call_id":     op.CallID.String(),
	})

	site, ok := c.Verifiers[op.CallID]
	if !ok {
		log.Warn("unknown call id")
		return &CallError{Op: "verify", Call: &op.CallID, Err: ErrUnknownCallID}
	}

	readOnceInput := make([]StateValue, len(op.DestructibleIn))
	for i, in := range op.DestructibleIn {
		// Resolve confirms the cell is still unspent; the witness supplied
		// by the spender, not the sealed data, is what the verifier loads.
		if _, err := memory.Resolve(in.Addr); err != nil {
			log.WithField("addr", in.Addr.String()).Warn("unresolved destructible input")
			return &CallError{Op: "verify", Addr: &in.Addr, Err: err}
		}
		readOnceInput[i] = in.Witness
	}

	immutableInput := make([]StateValue, len(op.ImmutableIn))
	for i, addr := range op.ImmutableIn {
		data, err := memory.ResolveImmutable(addr)
		if err != nil {
			log.WithField("addr", addr.String()).Warn("unresolved immutable input")
			return &CallError{Op: "verify", Addr: &addr, Err: err}
		}
		immutableInput[i] = data.Value
	}

	ctx := &VmContext{
		ReadOnceInput:   readOnceInput,
		ImmutableInput:  immutableInput,
		ReadOnceOutput:  op.DestructibleOut,
		ImmutableOutput: op.ImmutableOut,
	}

	lib, ok := repo.Lookup(site.LibID)
	if !ok {
		log.WithField("lib_id", site.LibID.String()).Warn("verifier library not found")
		return &CallError{Op: "verify", Call: &op.CallID, Err: ErrUnknownCallID}
	}

	core := NewCore(c.FieldOrderSelector)
	status := RunVM(core, lib, site.Offset, ctx, repo)
	if status != StatusOk {
		log.Warn("verifier failed")
		return &CallError{Op: "verify", Call: &op.CallID, Err: ErrVerifierFail}
	}
	return nil
}

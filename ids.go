package ultrasonic

// Opid is a tagged-SHA-256 identifier binding an Operation to its canonical
// encoding.
type Opid [32]byte

// OpidFromBytes wraps raw bytes as an Opid.
func OpidFromBytes(b [32]byte) Opid { return Opid(b) }

// Bytes returns the raw 32 bytes.
func (id Opid) Bytes() [32]byte { return [32]byte(id) }

// ToBytes returns the raw 32 bytes, matching the exposed interface name used
// elsewhere in this package's id types (spec §6).
func (id Opid) ToBytes() [32]byte { return [32]byte(id) }

func (id Opid) String() string { return encodeBaid64([32]byte(id)) }

// ParseOpid parses the Baid64 textual form of an Opid.
func ParseOpid(s string) (Opid, error) {
	b, err := decodeBaid64(s)
	if err != nil {
		return Opid{}, err
	}
	return Opid(b), nil
}

// ContractId is a tagged-SHA-256 identifier of a contract's canonical
// encoding (see Contract.ContractId).
type ContractId [32]byte

func ContractIdFromBytes(b [32]byte) ContractId { return ContractId(b) }
func (id ContractId) Bytes() [32]byte           { return [32]byte(id) }
func (id ContractId) ToBytes() [32]byte         { return [32]byte(id) }
func (id ContractId) String() string            { return encodeBaid64([32]byte(id)) }

// ParseContractId parses the Baid64 textual form of a ContractId.
func ParseContractId(s string) (ContractId, error) {
	b, err := decodeBaid64(s)
	if err != nil {
		return ContractId{}, err
	}
	return ContractId(b), nil
}

// CodexId is a tagged-SHA-256 identifier of a codex's canonical encoding.
type CodexId [32]byte

func CodexIdFromBytes(b [32]byte) CodexId { return CodexId(b) }
func (id CodexId) Bytes() [32]byte        { return [32]byte(id) }
func (id CodexId) ToBytes() [32]byte      { return [32]byte(id) }
func (id CodexId) String() string         { return encodeBaid64([32]byte(id)) }

// ParseCodexId parses the Baid64 textual form of a CodexId.
func ParseCodexId(s string) (CodexId, error) {
	b, err := decodeBaid64(s)
	if err != nil {
		return CodexId{}, err
	}
	return CodexId(b), nil
}

// CallId selects a verifier entry point in a codex's verifier table.
type CallId [32]byte

func CallIdFromBytes(b [32]byte) CallId { return CallId(b) }
func (id CallId) Bytes() [32]byte       { return [32]byte(id) }
func (id CallId) ToBytes() [32]byte     { return [32]byte(id) }
func (id CallId) String() string        { return encodeBaid64([32]byte(id)) }

// ParseCallId parses the Baid64 textual form of a CallId.
func ParseCallId(s string) (CallId, error) {
	b, err := decodeBaid64(s)
	if err != nil {
		return CallId{}, err
	}
	return CallId(b), nil
}

// AccessId commits to the accessed inputs of a single operation.
type AccessId [32]byte

func AccessIdFromBytes(b [32]byte) AccessId { return AccessId(b) }
func (id AccessId) Bytes() [32]byte         { return [32]byte(id) }
func (id AccessId) ToBytes() [32]byte       { return [32]byte(id) }
func (id AccessId) String() string          { return encodeBaid64([32]byte(id)) }

// ParseAccessId parses the Baid64 textual form of an AccessId.
func ParseAccessId(s string) (AccessId, error) {
	b, err := decodeBaid64(s)
	if err != nil {
		return AccessId{}, err
	}
	return AccessId(b), nil
}

// GenesisId identifies a Genesis operation; it shares Opid's encoding rules
// but carries its own tag.
type GenesisId [32]byte

func GenesisIdFromBytes(b [32]byte) GenesisId { return GenesisId(b) }
func (id GenesisId) Bytes() [32]byte          { return [32]byte(id) }
func (id GenesisId) ToBytes() [32]byte        { return [32]byte(id) }
func (id GenesisId) String() string           { return encodeBaid64([32]byte(id)) }

// ParseGenesisId parses the Baid64 textual form of a GenesisId.
func ParseGenesisId(s string) (GenesisId, error) {
	b, err := decodeBaid64(s)
	if err != nil {
		return GenesisId{}, err
	}
	return GenesisId(b), nil
}

// computeAccessID hashes the ordered list of accessed CellAddr values an
// operation resolved against memory (its destructible and immutable inputs),
// binding the operation to the specific predecessors it consumed/read (spec
// §3's "hash committing to the accessed inputs of one operation").
func computeAccessID(destructibleIn []CellAddr, immutableIn []CellAddr) (AccessId, error) {
	out := make([]byte, 0, 4+32*(len(destructibleIn)+len(immutableIn)))
	var err error
	out, err = appendSeqLen(out, len(destructibleIn))
	if err != nil {
		return AccessId{}, err
	}
	for _, a := range destructibleIn {
		out = append(out, a.Encode()...)
	}
	out, err = appendSeqLen(out, len(immutableIn))
	if err != nil {
		return AccessId{}, err
	}
	for _, a := range immutableIn {
		out = append(out, a.Encode()...)
	}
	return AccessId(taggedID(tagAccessID, out)), nil
}

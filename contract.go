package ultrasonic

import "fmt"

// Ffv is the fast-forward version tag carried by a contract header.
// Decoding rejects anything other than the zero value (spec §5, S5).
type Ffv uint16

// String renders the version the way decode-failure diagnostics quote it.
func (v Ffv) String() string {
	return fmt.Sprintf("RGB/1.%d", uint16(v))
}

// DecodeFfv validates a little-endian-encoded Ffv, returning
// ErrDataIntegrity (wrapped with the rendered version) if it is non-zero.
func DecodeFfv(b []byte) (Ffv, error) {
	if len(b) < 2 {
		return 0, fmt.Errorf("%w: ffv truncated", ErrDataIntegrity)
	}
	v := Ffv(uint16(b[0]) | uint16(b[1])<<8)
	if v != 0 {
		return 0, fmt.Errorf("%w: unsupported contract version %s, please update", ErrDataIntegrity, v)
	}
	return v, nil
}

// ProofOfPubl is the proof-of-publication discriminator a Contract is
// parameterized over (spec §3, REDESIGN FLAGS). The only shipped variant is
// Private; the constraint exists so a future on-chain variant can be added
// without touching Contract itself.
type ProofOfPubl interface {
	// Discriminator is the 4-byte tag distinguishing proof-of-publication
	// variants in the canonical encoding.
	Discriminator() [4]byte
}

// Private is the only shipped ProofOfPubl variant: an off-chain contract
// with no publication proof, discriminated by 0xFFFFFFFF.
type Private struct{}

// Discriminator implements ProofOfPubl.
func (Private) Discriminator() [4]byte { return [4]byte{0xFF, 0xFF, 0xFF, 0xFF} }

// DecodePrivate is the decodePoP callback for DecodeContract[Private]: it
// accepts only Private's own discriminator.
func DecodePrivate(disc [4]byte) (Private, error) {
	if disc != (Private{}).Discriminator() {
		return Private{}, fmt.Errorf("%w: unknown proof-of-publication discriminator %x", ErrInvalidTag, disc)
	}
	return Private{}, nil
}

// ContractNameKind tags the ContractName union.
type ContractNameKind uint8

const (
	ContractUnnamed ContractNameKind = iota
	ContractNamed
)

// ContractName is a tagged union: either Unnamed or a Named string.
type ContractName struct {
	Kind ContractNameKind
	Name string
}

// Unnamed is the zero-value ContractName.
func Unnamed() ContractName { return ContractName{Kind: ContractUnnamed} }

// Named builds a ContractName carrying name.
func Named(name string) ContractName { return ContractName{Kind: ContractNamed, Name: name} }

// Encode writes the canonical byte layout: a single discriminator byte,
// followed by a length-prefixed UTF-8 string when Named.
func (n ContractName) Encode() ([]byte, error) {
	if n.Kind == ContractUnnamed {
		return []byte{byte(ContractUnnamed)}, nil
	}
	out := []byte{byte(ContractNamed)}
	var err error
	out, err = appendSeqLen(out, len(n.Name))
	if err != nil {
		return nil, err
	}
	out = append(out, n.Name...)
	return out, nil
}

// DecodeContractName parses the canonical encoding produced by Encode.
func DecodeContractName(b []byte) (ContractName, int, error) {
	if len(b) < 1 {
		return ContractName{}, 0, fmt.Errorf("%w: contract name truncated", ErrDataIntegrity)
	}
	switch ContractNameKind(b[0]) {
	case ContractUnnamed:
		return Unnamed(), 1, nil
	case ContractNamed:
		name, n, err := readString(b[1:])
		if err != nil {
			return ContractName{}, 0, err
		}
		return Named(name), 1 + n, nil
	default:
		return ContractName{}, 0, fmt.Errorf("%w: contract name kind %d", ErrInvalidTag, b[0])
	}
}

// Contract is a contract header plus its static codex and the genesis
// operation that originates it, parameterized over a proof-of-publication
// variant (spec §3).
type Contract[PoP ProofOfPubl] struct {
	Version     Ffv
	ProofOfPubl PoP
	Salt        uint64
	Timestamp   int64
	Name        ContractName
	Issuer      string
	Codex       Codex
	Initial     Genesis
}

// Encode writes the canonical byte layout: the fixed 32-byte header
// (version 2, proof_of_publ 4, reserved 10, salt 8, timestamp 8) followed
// by name, issuer, codex, and the genesis operation.
func (c Contract[PoP]) Encode() ([]byte, error) {
	out := make([]byte, 0, 128)
	out = appendUint16LE(out, uint16(c.Version))
	disc := c.ProofOfPubl.Discriminator()
	out = append(out, disc[:]...)
	out = append(out, make([]byte, 10)...) // reserved
	out = appendUint64LE(out, c.Salt)
	out = appendInt64LE(out, c.Timestamp)

	nameEnc, err := c.Name.Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, nameEnc...)

	out, err = appendSeqLen(out, len(c.Issuer))
	if err != nil {
		return nil, err
	}
	out = append(out, c.Issuer...)

	codexEnc, err := c.Codex.Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, codexEnc...)

	initEnc, err := c.Initial.Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, initEnc...)

	return out, nil
}

// DecodeContract parses the canonical encoding produced by Encode. Go
// generics cannot construct an arbitrary PoP from its 4-byte discriminator,
// so the caller supplies decodePoP to turn the discriminator back into a
// concrete proof-of-publication value (e.g. rejecting anything but
// Private's 0xFFFFFFFF tag).
func DecodeContract[PoP ProofOfPubl](b []byte, decodePoP func([4]byte) (PoP, error)) (Contract[PoP], int, error) {
	if len(b) < 32 {
		return Contract[PoP]{}, 0, fmt.Errorf("%w: contract header truncated", ErrDataIntegrity)
	}
	version, err := DecodeFfv(b)
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	var disc [4]byte
	copy(disc[:], b[2:6])
	pop, err := decodePoP(disc)
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	salt, _, err := readUint64LE(b[16:24])
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	timestamp, _, err := readInt64LE(b[24:32])
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	off := 32

	name, n, err := DecodeContractName(b[off:])
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	off += n

	issuer, n, err := readString(b[off:])
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	off += n

	codex, n, err := DecodeCodex(b[off:])
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	off += n

	genesis, n, err := DecodeGenesis(b[off:])
	if err != nil {
		return Contract[PoP]{}, 0, err
	}
	off += n

	return Contract[PoP]{
		Version:     version,
		ProofOfPubl: pop,
		Salt:        salt,
		Timestamp:   timestamp,
		Name:        name,
		Issuer:      issuer,
		Codex:       codex,
		Initial:     genesis,
	}, off, nil
}

// ContractId derives this contract's identifier by tagged-hashing its
// canonical encoding (spec §3, S1).
func (c Contract[PoP]) ContractId() (ContractId, error) {
	enc, err := c.Encode()
	if err != nil {
		return ContractId{}, err
	}
	return ContractId(taggedID(tagContractID, enc)), nil
}

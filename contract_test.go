package ultrasonic

import "testing"

func TestDecodeFfvRejectsNonZero(t *testing.T) {
	_, err := DecodeFfv([]byte{1, 0})
	if err == nil {
		t.Fatalf("expected error decoding non-zero ffv")
	}
	if got := (Ffv(1)).String(); got != "RGB/1.1" {
		t.Fatalf("String()=%q want RGB/1.1", got)
	}
}

func TestDecodeFfvAcceptsZero(t *testing.T) {
	v, err := DecodeFfv([]byte{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Fatalf("v=%d want 0", v)
	}
}

func TestEmptyGenesisContractIdDeterministic(t *testing.T) {
	c := Contract[Private]{
		Version:     0,
		ProofOfPubl: Private{},
		Name:        Unnamed(),
		Codex:       Codex{Verifiers: map[CallId]LibSite{}},
		Initial:     Genesis{},
	}
	id1, err := c.ContractId()
	if err != nil {
		t.Fatalf("ContractId failed: %v", err)
	}
	id2, err := c.ContractId()
	if err != nil {
		t.Fatalf("ContractId failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("ContractId not deterministic for the empty genesis")
	}
}

func TestPrivateDiscriminator(t *testing.T) {
	want := [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
	if got := (Private{}).Discriminator(); got != want {
		t.Fatalf("Discriminator()=%x want %x", got, want)
	}
}

func TestContractNameEncode(t *testing.T) {
	enc, err := Unnamed().Encode()
	if err != nil || len(enc) != 1 || enc[0] != byte(ContractUnnamed) {
		t.Fatalf("Unnamed encode=%x err=%v", enc, err)
	}
	named, err := Named("acme").Encode()
	if err != nil {
		t.Fatalf("Named encode failed: %v", err)
	}
	if named[0] != byte(ContractNamed) {
		t.Fatalf("Named encode tag=%x want %x", named[0], ContractNamed)
	}
}

func TestContractNameRoundTrip(t *testing.T) {
	enc, err := Unnamed().Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, n, err := DecodeContractName(enc)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(enc) || got != Unnamed() {
		t.Fatalf("round trip mismatch: got %+v want Unnamed", got)
	}

	enc, err = Named("acme").Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, n, err = DecodeContractName(enc)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(enc) || got != Named("acme") {
		t.Fatalf("round trip mismatch: got %+v want Named(acme)", got)
	}
}

func TestContractRoundTrip(t *testing.T) {
	c := Contract[Private]{
		Version:     0,
		ProofOfPubl: Private{},
		Salt:        7,
		Timestamp:   99,
		Name:        Named("acme"),
		Issuer:      "acme-issuer",
		Codex:       Codex{Name: "codex", Verifiers: map[CallId]LibSite{}},
		Initial:     Genesis{CodexID: CodexId{1}},
	}
	enc, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, n, err := DecodeContract[Private](enc, DecodePrivate)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed=%d want %d", n, len(enc))
	}
	if got.Salt != c.Salt || got.Timestamp != c.Timestamp || got.Name != c.Name || got.Issuer != c.Issuer {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Codex.Name != c.Codex.Name || got.Initial.CodexID != c.Initial.CodexID {
		t.Fatalf("round trip nested mismatch: %+v", got)
	}
}

func TestDecodeContractRejectsUnknownProofOfPubl(t *testing.T) {
	c := Contract[Private]{Codex: Codex{Verifiers: map[CallId]LibSite{}}}
	enc, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	enc[2] = 0x01 // corrupt the discriminator away from Private's 0xFFFFFFFF
	if _, _, err := DecodeContract[Private](enc, DecodePrivate); err == nil {
		t.Fatalf("expected error decoding an unknown proof-of-publication discriminator")
	}
}

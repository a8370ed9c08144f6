package ultrasonic

import (
	"errors"
	"testing"
)

func TestCodexVerifyUnknownCallID(t *testing.T) {
	codex := Codex{Verifiers: map[CallId]LibSite{}}
	op := &Operation{CallID: CallId{1}}
	m := NewMemory()
	err := codex.Verify(op, m, MapLibRepo{})
	if !errors.Is(err, ErrUnknownCallID) {
		t.Fatalf("expected ErrUnknownCallID, got %v", err)
	}
}

func TestCodexVerifyAcceptsTrivialHalt(t *testing.T) {
	lib, err := Assemble("halt\n")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	callID := CallId{1}
	codex := Codex{
		FieldOrderSelector: FieldCurve25519,
		Verifiers:          map[CallId]LibSite{callID: {LibID: lib.LibId(), Offset: 0}},
	}
	repo := MapLibRepo{lib.LibId(): lib}
	op := &Operation{CallID: callID}
	if err := codex.Verify(op, NewMemory(), repo); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
}

func TestCodexVerifyRejectsChkAfterFail(t *testing.T) {
	// cknxi:destructible fails immediately on an empty context (no
	// destructible inputs), and chk latches CO into the sticky CK.
	lib, err := Assemble("cknxi:destructible\nchk\nhalt\n")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	callID := CallId{2}
	codex := Codex{
		FieldOrderSelector: FieldCurve25519,
		Verifiers:          map[CallId]LibSite{callID: {LibID: lib.LibId(), Offset: 0}},
	}
	repo := MapLibRepo{lib.LibId(): lib}
	op := &Operation{CallID: callID}
	err = codex.Verify(op, NewMemory(), repo)
	if !errors.Is(err, ErrVerifierFail) {
		t.Fatalf("expected ErrVerifierFail, got %v", err)
	}
}

func TestCodexIdDeterministic(t *testing.T) {
	codex := Codex{Name: "test", Developer: "dev", Verifiers: map[CallId]LibSite{}}
	id1, err := codex.CodexId()
	if err != nil {
		t.Fatalf("CodexId failed: %v", err)
	}
	id2, err := codex.CodexId()
	if err != nil {
		t.Fatalf("CodexId failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("CodexId not deterministic")
	}
}

func TestLibSiteEncodeLength(t *testing.T) {
	site := LibSite{LibID: LibId{1, 2, 3}, Offset: 7}
	if got := len(site.Encode()); got != 34 {
		t.Fatalf("encoded length=%d want 34", got)
	}
}

func TestLibSiteRoundTrip(t *testing.T) {
	site := LibSite{LibID: LibId{1, 2, 3}, Offset: 7}
	got, n, err := DecodeLibSite(site.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != 34 || got != site {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, site)
	}
}

func TestDecodeCodexRejectsUnknownFieldOrder(t *testing.T) {
	codex := Codex{Verifiers: map[CallId]LibSite{}}
	enc, err := codex.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// Field order selector sits right after the two length-prefixed strings;
	// both are empty here, so it's the first byte after name+developer
	// length prefixes (offset 2+2+2 = 6).
	enc[6] = 0xFF
	if _, _, err := DecodeCodex(enc); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
}

func TestCodexRoundTrip(t *testing.T) {
	codex := Codex{
		Name:               "acme",
		Developer:          "acme-dev",
		FieldOrderSelector: FieldStark,
		Verifiers: map[CallId]LibSite{
			{1}: {LibID: LibId{2}, Offset: 5},
			{2}: {LibID: LibId{3}, Offset: 9},
		},
		Timestamp: -42,
		Version:   0,
	}
	enc, err := codex.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, n, err := DecodeCodex(enc)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed=%d want %d", n, len(enc))
	}
	if got.Name != codex.Name || got.Developer != codex.Developer || got.Timestamp != codex.Timestamp {
		t.Fatalf("round trip header mismatch: %+v", got)
	}
	if got.FieldOrderSelector != codex.FieldOrderSelector || len(got.Verifiers) != len(codex.Verifiers) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	for id, site := range codex.Verifiers {
		if got.Verifiers[id] != site {
			t.Fatalf("verifier %s mismatch: got %+v want %+v", id, got.Verifiers[id], site)
		}
	}
}

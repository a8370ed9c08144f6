package ultrasonic

import "testing"

func TestTaggedIDDeterministic(t *testing.T) {
	a := taggedID(tagOpid, []byte("payload"))
	b := taggedID(tagOpid, []byte("payload"))
	if a != b {
		t.Fatalf("taggedID not deterministic")
	}
}

func TestTaggedIDDomainSeparation(t *testing.T) {
	a := taggedID(tagOpid, []byte("payload"))
	b := taggedID(tagContractID, []byte("payload"))
	if a == b {
		t.Fatalf("different tags must not collide on identical payload")
	}
}

func TestTaggedIDSensitiveToPayload(t *testing.T) {
	a := taggedID(tagOpid, []byte("payload-1"))
	b := taggedID(tagOpid, []byte("payload-2"))
	if a == b {
		t.Fatalf("different payloads must not collide")
	}
}

func TestAppendSeqLenOverLimit(t *testing.T) {
	if _, err := appendSeqLen(nil, 0x10000); err == nil {
		t.Fatalf("expected ErrOverLimit for sequence length 2^16")
	}
}

func TestAppendOptionEncoding(t *testing.T) {
	present := appendOption(nil, true, []byte{0xAA})
	if present[0] != 0x01 || present[1] != 0xAA {
		t.Fatalf("present encoding=%x", present)
	}
	absent := appendOption(nil, false, []byte{0xAA})
	if len(absent) != 1 || absent[0] != 0x00 {
		t.Fatalf("absent encoding=%x", absent)
	}
}

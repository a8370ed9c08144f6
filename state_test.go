package ultrasonic

import (
	"bytes"
	"testing"
)

func TestStateValueArityRoundTrip(t *testing.T) {
	v := ThreeValue(FE128{1}, FE128{2}, FE128{3})
	enc := v.Encode()
	if len(enc) != 1+3*16 {
		t.Fatalf("encoded length=%d want %d", len(enc), 1+3*16)
	}
	got, n, err := DecodeStateValue(enc)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed=%d want %d", n, len(enc))
	}
	if got.Arity() != 3 {
		t.Fatalf("arity=%d want 3", got.Arity())
	}
	for i := uint8(0); i < 3; i++ {
		e, ok := got.Get(i)
		if !ok || e != v.elems[i] {
			t.Fatalf("elem %d mismatch", i)
		}
	}
	if _, ok := got.Get(3); ok {
		t.Fatalf("Get(3) should report false at arity 3")
	}
}

func TestStateValueNoneArity(t *testing.T) {
	v := NoneValue()
	if v.Arity() != 0 {
		t.Fatalf("arity=%d want 0", v.Arity())
	}
	if _, ok := v.Get(0); ok {
		t.Fatalf("Get(0) on arity-0 value should report false")
	}
	if got := v.Encode(); !bytes.Equal(got, []byte{0x00}) {
		t.Fatalf("encode=%x want [00]", got)
	}
}

func TestDecodeStateValueRejectsOverArity(t *testing.T) {
	_, _, err := DecodeStateValue([]byte{0x05})
	if err == nil {
		t.Fatalf("expected error for arity 5")
	}
}

func TestDecodeStateValueRejectsTruncated(t *testing.T) {
	_, _, err := DecodeStateValue([]byte{0x02, 0x01})
	if err == nil {
		t.Fatalf("expected truncation error")
	}
}

func TestNewAuthTokenLength(t *testing.T) {
	tok := NewAuthToken([]byte("seal-seed"))
	if len(tok) != 30 {
		t.Fatalf("auth token length=%d want 30", len(tok))
	}
}

func TestNewRawDataOverLimit(t *testing.T) {
	big := make([]byte, MaxRawData+1)
	if _, err := NewRawData(big); err == nil {
		t.Fatalf("expected ErrOverLimit")
	}
}

func TestStateCellEncodeWithoutLock(t *testing.T) {
	c := StateCell{Data: SingleValue(FE128{9}), Seal: FE128{7}}
	enc := c.Encode()
	// 1 (arity) + 16 (elem) + 16 (seal) + 1 (option tag) = 34
	if len(enc) != 34 {
		t.Fatalf("encoded length=%d want 34", len(enc))
	}
	if enc[len(enc)-1] != 0x00 {
		t.Fatalf("expected trailing 0x00 option tag for nil lock")
	}
}

func TestStateCellRoundTrip(t *testing.T) {
	lock := LibSite{LibID: LibId{1}, Offset: 3}
	c := StateCell{Data: DoubleValue(FE128{1}, FE128{2}), Seal: FE128{9}, Lock: &lock}
	enc := c.Encode()
	got, n, err := DecodeStateCell(enc)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed=%d want %d", n, len(enc))
	}
	if got.Data.Arity() != 2 || got.Seal != c.Seal || got.Lock == nil || *got.Lock != lock {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStateCellRoundTripWithoutLock(t *testing.T) {
	c := StateCell{Data: NoneValue(), Seal: FE128{4}}
	got, n, err := DecodeStateCell(c.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(c.Encode()) || got.Lock != nil {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStateDataRoundTrip(t *testing.T) {
	raw, err := NewRawData([]byte("payload"))
	if err != nil {
		t.Fatalf("NewRawData failed: %v", err)
	}
	d := StateData{Value: SingleValue(FE128{5}), Auth: NewAuthToken([]byte("seed")), Raw: &raw}
	enc := d.Encode()
	got, n, err := DecodeStateData(enc)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed=%d want %d", n, len(enc))
	}
	if got.Auth != d.Auth || got.Raw == nil || string(*got.Raw) != "payload" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStateDataRoundTripWithoutRaw(t *testing.T) {
	d := StateData{Value: NoneValue(), Auth: NewAuthToken([]byte("x"))}
	got, n, err := DecodeStateData(d.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(d.Encode()) || got.Raw != nil {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStateDataEncodeWithRaw(t *testing.T) {
	raw, err := NewRawData([]byte("hello"))
	if err != nil {
		t.Fatalf("NewRawData failed: %v", err)
	}
	d := StateData{Value: NoneValue(), Auth: NewAuthToken([]byte("x")), Raw: &raw}
	enc := d.Encode()
	// 1 (arity) + 30 (auth) + 1 (option tag) + 2 (len) + 5 (payload)
	if len(enc) != 1+30+1+2+5 {
		t.Fatalf("encoded length=%d want %d", len(enc), 1+30+1+2+5)
	}
}

package ultrasonic

import "testing"

func TestFieldOrderSelectorString(t *testing.T) {
	cases := map[FieldOrderSelector]string{
		FieldCurve25519: "curve25519",
		FieldStark:      "stark",
		FieldSecp:       "secp256k1",
	}
	for sel, want := range cases {
		if got := sel.String(); got != want {
			t.Fatalf("String()=%q want %q", got, want)
		}
	}
}

func TestFieldOrderConstantsAreOdd(t *testing.T) {
	// All three primes are odd; a quick sanity check that the hex literals
	// were not accidentally truncated or shifted.
	for _, order := range []struct {
		name string
		sel  FieldOrderSelector
	}{
		{"curve25519", FieldCurve25519},
		{"stark", FieldStark},
		{"secp256k1", FieldSecp},
	} {
		v := order.sel.Order()
		if v == nil {
			t.Fatalf("%s: Order() returned nil", order.name)
		}
		if v.IsZero() {
			t.Fatalf("%s: Order() is zero", order.name)
		}
		if v.Bytes32()[31]&1 == 0 {
			t.Fatalf("%s: field order %s is even", order.name, v.Hex())
		}
	}
}

func TestFE128String(t *testing.T) {
	e := FE128{0xde, 0xad, 0xbe, 0xef}
	if got := e.String(); got[:8] != "deadbeef" {
		t.Fatalf("String()=%q want prefix deadbeef", got)
	}
}

package ultrasonic

import "errors"

// Decoding errors. These are hard errors: they abort before any VM is
// invoked.
var (
	// ErrInvalidTag is returned when a canonical encoding carries an unknown
	// enum discriminator.
	ErrInvalidTag = errors.New("ultrasonic: invalid tag")
	// ErrOverLimit is returned when a length-prefixed field exceeds its
	// 2^16-1 bound.
	ErrOverLimit = errors.New("ultrasonic: over limit")
	// ErrDataIntegrity is returned for malformed or unsupported-version
	// encodings (e.g. a non-zero fast-forward version).
	ErrDataIntegrity = errors.New("ultrasonic: data integrity error")
)

// Address/id parsing errors.
var (
	ErrBadID            = errors.New("ultrasonic: bad id")
	ErrBadPos           = errors.New("ultrasonic: bad position")
	ErrMissingSeparator = errors.New("ultrasonic: missing separator")
)

// Memory errors, surfaced from Memory.Apply. Codex.Verify reports a spent
// destructible input as UnresolvedInputError, not as a double spend.
var (
	ErrDoubleSpend = errors.New("ultrasonic: double spend")
)

// Call dispatch / verification errors, surfaced from Codex.Verify.
var (
	ErrUnknownCallID  = errors.New("ultrasonic: unknown call id")
	ErrVerifierFail   = errors.New("ultrasonic: verifier failed")
	ErrUnresolvedCell = errors.New("ultrasonic: unresolved input")
)

// UnresolvedInputError wraps ErrUnresolvedCell with the offending address.
type UnresolvedInputError struct {
	Addr CellAddr
}

func (e *UnresolvedInputError) Error() string {
	return "ultrasonic: unresolved input at " + e.Addr.String()
}

func (e *UnresolvedInputError) Unwrap() error { return ErrUnresolvedCell }

// DoubleSpendError wraps ErrDoubleSpend with the offending address.
type DoubleSpendError struct {
	Addr CellAddr
}

func (e *DoubleSpendError) Error() string {
	return "ultrasonic: double spend at " + e.Addr.String()
}

func (e *DoubleSpendError) Unwrap() error { return ErrDoubleSpend }

// UnknownCallIDError wraps ErrUnknownCallID with the offending CallId.
type UnknownCallIDError struct {
	CallID CallId
}

func (e *UnknownCallIDError) Error() string {
	return "ultrasonic: unknown call id " + e.CallID.String()
}

func (e *UnknownCallIDError) Unwrap() error { return ErrUnknownCallID }

// ParseAddrError is returned by CellAddr parsing.
type ParseAddrError struct {
	Kind error
	Text string
}

func (e *ParseAddrError) Error() string {
	return "ultrasonic: cannot parse cell address " + e.Text + ": " + e.Kind.Error()
}

func (e *ParseAddrError) Unwrap() error { return e.Kind }

package formatter

import (
	"errors"
	"fmt"
)

// ErrNothingChanged reports that the input was already formatted. It is
// a positive outcome, not a failure, and callers treat it as such.
var ErrNothingChanged = errors.New("source is already well formatted")

// EquivalenceError means the formatted output does not carry the same
// program as the input. It is an internal fault: the input was valid
// and must be left untouched.
type EquivalenceError struct {
	Src string
	Dst string
	// Reason distinguishes an unparseable result from a fingerprint
	// mismatch.
	Reason error
}

func (e *EquivalenceError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("INTERNAL ERROR: produced invalid code: %v; please report a bug", e.Reason)
	}
	return "INTERNAL ERROR: produced code that is not equivalent to the source; please report a bug"
}

func (e *EquivalenceError) Unwrap() error { return e.Reason }

// StabilityError means formatting its own output a second time changed
// it again. Also an internal fault.
type StabilityError struct {
	First  string
	Second string
}

func (e *StabilityError) Error() string {
	return "INTERNAL ERROR: produced different code on the second pass; please report a bug"
}

// IsInternalFault reports whether err is one of the self-check failures
// that must surface with a distinct exit status.
func IsInternalFault(err error) bool {
	var eq *EquivalenceError
	var st *StabilityError
	return errors.As(err, &eq) || errors.As(err, &st)
}

package fpmath

import (
	"errors"
	"fmt"
)

// DomainError marks a mathematically invalid input: a zero reserve, a
// logarithm of a non-positive value, a solved reserve that would go
// non-positive. Callers can reject the operation and keep going; it is
// never treated as an internal failure.
type DomainError struct {
	Op     string // operation that rejected the input, e.g. "ln", "swap"
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Domainf builds a DomainError with a formatted reason.
func Domainf(op, format string, args ...any) *DomainError {
	return &DomainError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsDomainError reports whether err is (or wraps) a DomainError.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

package pool

import (
	"errors"
	"fmt"
)

// InvariantError reports that the post-swap invariant re-verification
// failed. That can only happen through a bug in the numeric primitives, so
// it is never a user-facing rejection: callers must refuse to commit the
// state and log it as an internal failure.
type InvariantError struct {
	PoolID string
	Before float64
	After  float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated for pool %s: %.12f -> %.12f", e.PoolID, e.Before, e.After)
}

// IsInvariantError reports whether err is (or wraps) an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

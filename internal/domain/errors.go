package domain

import "errors"

// Validation errors: caller-correctable, surfaced immediately, never retried.
var (
	ErrSelfJudgment    = errors.New("cannot judge your own pet")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrMessageTooLong  = errors.New("message exceeds maximum length")
	ErrNotAParticipant = errors.New("pet is not a participant in this match")
)

// Conflict errors: resolved by re-reading current state; the existing record wins.
var (
	ErrDuplicateJudgment = errors.New("judgment already recorded for this pair")
)

// Not-found conditions: normal states, not failures.
var (
	ErrNoActivePet   = errors.New("no active pet profile")
	ErrPetNotFound   = errors.New("pet not found")
	ErrMatchNotFound = errors.New("match not found")
)

// TransientError marks an infrastructure failure (network, backend). The core
// does not retry; callers may retry idempotent operations.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError. Returns nil for nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

package confirmations

import (
	"errors"
	"fmt"
)

var (
	// ErrConsentRequired indicates the privacy-acceptance flag was not set.
	ErrConsentRequired = errors.New("confirmations: privacy consent required")
	// ErrDuplicateSubmission indicates a record already exists for the email.
	ErrDuplicateSubmission = errors.New("confirmations: duplicate submission")
	// ErrTooManyRequests indicates the client exceeded the submission window.
	ErrTooManyRequests = errors.New("confirmations: too many requests")
	// ErrNotFound indicates no record matches the requested folio.
	ErrNotFound = errors.New("confirmations: record not found")
	// ErrPersistence indicates the durable write failed; the submission is
	// not committed.
	ErrPersistence = errors.New("confirmations: persistence unavailable")
)

// DuplicateError carries the offending email (original casing) for user
// display.
type DuplicateError struct {
	Email string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("confirmations: a confirmation already exists for %s", e.Email)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateSubmission
}

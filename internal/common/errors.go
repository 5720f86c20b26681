package common

import (
	"errors"
	"fmt"
)

// Shared application errors.
var (
	// ErrNotFound indicates a record does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrNoAccount indicates no 4-digit account run could be derived from
	// an import filename. Terminal for the import session.
	ErrNoAccount = errors.New("could not determine account from filename")

	// ErrNoTransactions indicates a parsed file yielded no usable rows.
	// Terminal for the import session.
	ErrNoTransactions = errors.New("no valid transactions found")

	// ErrMissingConfig indicates required configuration is absent.
	ErrMissingConfig = errors.New("missing configuration")
)

// UserError wraps an error with a message fit for the operator. Only input
// errors and commit-partial-failure summaries reach the operator; all other
// degradations are logged and folded into classification metadata.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new operator-facing error.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// FormatUserError reduces an error chain to the message shown to the
// operator, preferring the UserError message when one is present.
func FormatUserError(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

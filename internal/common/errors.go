// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Resource errors.
	ErrNotFound = errors.New("not found")

	// Local validation errors.
	ErrNotPDF       = errors.New("only PDF files are accepted")
	ErrNoFile       = errors.New("no file selected")
	ErrNoExtraction = errors.New("no extraction selected")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
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

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// displayer is implemented by errors that carry their own display text.
type displayer interface {
	DisplayMessage() string
}

// DisplayMessage returns the text a user should see for err. Errors that carry
// a display message (API errors, user errors) win over the wrapped chain text.
// fallback is used when err has no message at all.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var d displayer
	if errors.As(err, &d) {
		if msg := d.DisplayMessage(); msg != "" {
			return msg
		}
	}

	var userErr *UserError
	if errors.As(err, &userErr) && userErr.UserMessage != "" {
		return userErr.UserMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

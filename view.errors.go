package main

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures a view can report.
type ErrorKind string

const (
	KindFetch          ErrorKind = "fetch"
	KindValidation     ErrorKind = "validation"
	KindMutation       ErrorKind = "mutation"
	KindDeleteNotFound ErrorKind = "delete_not_found"
	KindDelete         ErrorKind = "delete"
)

// User facing messages, one per kind.
const (
	MsgFetchFailed    = "Failed to fetch books. Please check the backend server."
	MsgDraftRequired  = "Title and author are required."
	MsgMutationFailed = "Failed to add/update book. Please try again."
	MsgBookNotFound   = "Book not found."
	MsgDeleteFailed   = "Failed to delete book. Please try again."
)

var messages = map[ErrorKind]string{
	KindFetch:          MsgFetchFailed,
	KindValidation:     MsgDraftRequired,
	KindMutation:       MsgMutationFailed,
	KindDeleteNotFound: MsgBookNotFound,
	KindDelete:         MsgDeleteFailed,
}

var (
	// ErrBusy is returned when a trigger fires while another operation is in flight.
	ErrBusy = errors.New("view: an operation is already in flight")
	// ErrViewClosed is returned once the view has been torn down.
	ErrViewClosed = errors.New("view: closed")
)

type missingFieldError string

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// ViewError is the result of a failed view operation. Message is
// what the page shows, Cause is what went wrong underneath.
type ViewError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func newViewError(kind ErrorKind, cause error) *ViewError {
	return &ViewError{Kind: kind, Message: messages[kind], Cause: cause}
}

func (e *ViewError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ViewError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err carries a ViewError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var verr *ViewError
	if errors.As(err, &verr) {
		return verr.Kind == kind
	}
	return false
}

// UserMessage returns the text to display for err, or an empty string
// for errors which are not meant to be shown.
func UserMessage(err error) string {
	var verr *ViewError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return ""
}

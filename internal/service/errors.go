package service

import (
	"errors"
	"fmt"

	"github.com/orablu/space-adoption/internal/repository"
	"github.com/orablu/space-adoption/internal/storage"
)

// Kind classifies a service failure.  The HTTP layer maps each kind to a
// status code.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
	KindUpload     Kind = "upload"
)

// Error is the error type returned by every service operation.  Message is
// safe to show to clients; Err keeps the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func notFoundError(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func conflictError(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }

func storeError(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

// uploadError converts a storage failure.  Size and type rejections are the
// client's fault; anything else is a failed write on our side.
func uploadError(err error) *Error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return &Error{Kind: KindUpload, Message: "file too large", Err: err}
	case errors.Is(err, storage.ErrTypeNotAllowed):
		return &Error{Kind: KindUpload, Message: "file type not allowed", Err: err}
	default:
		return storeError("could not store file", err)
	}
}

// fromRepo maps repository sentinels to service kinds.  notFound and
// conflict are the client messages for the two sentinel cases.
func fromRepo(err error, notFound, conflict, failed string) *Error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: notFound, Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &Error{Kind: KindConflict, Message: conflict, Err: err}
	default:
		return storeError(failed, err)
	}
}

// KindOf returns the kind of err, or KindStore for errors not produced by
// this package.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStore
}

// MessageOf returns the client message of err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "internal error"
}

package anikutusu

import (
	"errors"
	"fmt"
)

// Kind is a classification of error type.
type Kind string

const (
	InvalidInput Kind = "invalid_input"
	Generation   Kind = "generation"
	ShareDecode  Kind = "share_decode"
	Playback     Kind = "playback"
	Persistence  Kind = "persistence"
	ShareAction  Kind = "share_action"
)

// AppError represents errors surfaced to the user by the application.
// Every kind is non-fatal: the caller remains interactive and may retry
// the triggering action.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch e.Kind {
	case InvalidInput:
		return fmt.Sprintf("invalid input: %s", e.Message)
	case Generation:
		return fmt.Sprintf("generation failed: %s", e.message())
	case ShareDecode:
		return fmt.Sprintf("could not decode share token: %s", e.message())
	case Playback:
		return fmt.Sprintf("playback failed: %s", e.message())
	case Persistence:
		return fmt.Sprintf("history storage failed: %s", e.message())
	case ShareAction:
		return fmt.Sprintf("share failed: %s", e.message())
	default:
		return e.message()
	}
}

func (e *AppError) message() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap allows errors.Is / errors.As to work with wrapped errors.
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Helper constructors
func NewInvalidInputError(msg string) *AppError {
	return &AppError{Kind: InvalidInput, Message: msg}
}

func NewGenerationError(msg string, err error) *AppError {
	return &AppError{Kind: Generation, Message: msg, Err: err}
}

func NewShareDecodeError(msg string, err error) *AppError {
	return &AppError{Kind: ShareDecode, Message: msg, Err: err}
}

func NewPlaybackError(msg string, err error) *AppError {
	return &AppError{Kind: Playback, Message: msg, Err: err}
}

func NewPersistenceError(msg string, err error) *AppError {
	return &AppError{Kind: Persistence, Message: msg, Err: err}
}

func NewShareActionError(msg string, err error) *AppError {
	return &AppError{Kind: ShareAction, Message: msg, Err: err}
}

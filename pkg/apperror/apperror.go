// Package apperror defines the application error taxonomy shared by services
// and the HTTP layer. Every error carries a stable, user-presentable message;
// wrapping preserves the underlying cause for logs.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindDependency
	KindConfirmation
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Dependency marks store or external-service failures as retryable.
func Dependency(message string, err error) error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// Confirmation rejects a destructive operation whose confirmation token is
// absent or wrong.
func Confirmation(message string) error {
	return &Error{Kind: KindConfirmation, Message: message}
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsDependency(err error) bool   { return KindOf(err) == KindDependency }
func IsConfirmation(err error) bool { return KindOf(err) == KindConfirmation }

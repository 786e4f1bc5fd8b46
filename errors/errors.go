/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinel errors
var (
	// ErrInvalidExpression is returned when a query expression cannot be parsed
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrMissingOption is returned when a required query option is absent
	ErrMissingOption = errors.New("missing option")

	// ErrTableNotFound is returned when the target table does not exist
	ErrTableNotFound = errors.New("table not found")

	// ErrNetwork is returned for transient transport failures; safe to retry
	ErrNetwork = errors.New("network error")

	// ErrAuth is returned when the table store rejects the session's credentials
	ErrAuth = errors.New("authentication error")

	// ErrTimeout is returned when a remote call exceeds its deadline
	ErrTimeout = errors.New("timeout")

	// ErrTypeMismatch is returned when a value does not match an attribute's declared type
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrReadOnlyKey is returned when writing a key attribute of a persisted row
	ErrReadOnlyKey = errors.New("read-only key")

	// ErrUnknownCommand is returned when invoking a command that was never registered
	ErrUnknownCommand = errors.New("unknown command")

	// ErrCancelled is returned when the user dismisses a prompt
	ErrCancelled = errors.New("cancelled")

	// ErrReadOnly is returned when a write-back is attempted in read-only mode
	ErrReadOnly = errors.New("session is read-only")

	// ErrPermissionDenied is returned when a script uses a capability the
	// configuration does not grant
	ErrPermissionDenied = errors.New("permission denied")
)

// ExpressionError represents a malformed query expression
type ExpressionError struct {
	Expression string
	Err        error
}

func (e *ExpressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid expression %q: %v", e.Expression, e.Err)
	}
	return fmt.Sprintf("invalid expression %q", e.Expression)
}

func (e *ExpressionError) Is(target error) bool {
	return target == ErrInvalidExpression
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// MissingOptionError represents a required option that was not supplied
type MissingOptionError struct {
	Option string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("missing required option %q", e.Option)
}

func (e *MissingOptionError) Is(target error) bool {
	return target == ErrMissingOption
}

// TableNotFoundError represents a table that does not exist in the remote store
type TableNotFoundError struct {
	Table string
	Err   error
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found", e.Table)
}

func (e *TableNotFoundError) Is(target error) bool {
	return target == ErrTableNotFound
}

func (e *TableNotFoundError) Unwrap() error {
	return e.Err
}

// NetworkError represents a transient failure talking to the remote store
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError represents rejected or expired credentials
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a remote call that exceeded its deadline on every attempt
type TimeoutError struct {
	Operation string
	Deadline  time.Duration
	Attempts  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %d attempt(s) of %v", e.Operation, e.Attempts, e.Deadline)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// TypeMismatchError represents a value whose type is incompatible with an attribute
type TypeMismatchError struct {
	Attribute string
	Want      string
	Got       string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for attribute %q: expected %s, got %s", e.Attribute, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ReadOnlyKeyError represents a write to a key attribute of a persisted row
type ReadOnlyKeyError struct {
	Attribute string
}

func (e *ReadOnlyKeyError) Error() string {
	return fmt.Sprintf("attribute %q is part of the primary key of a persisted row", e.Attribute)
}

func (e *ReadOnlyKeyError) Is(target error) bool {
	return target == ErrReadOnlyKey
}

// UnknownCommandError represents an invocation of an unregistered command
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// CancelledError represents a prompt dismissed without input
type CancelledError struct {
	Prompt string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("prompt %q cancelled", e.Prompt)
}

func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// PermissionError represents a script capability that is switched off
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: no permission to %s", e.Action)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// Helper functions for creating errors

// NewExpressionError creates a new ExpressionError
func NewExpressionError(expr string, cause error) error {
	return &ExpressionError{Expression: expr, Err: cause}
}

// NewMissingOptionError creates a new MissingOptionError
func NewMissingOptionError(option string) error {
	return &MissingOptionError{Option: option}
}

// NewTableNotFoundError creates a new TableNotFoundError
func NewTableNotFoundError(table string, cause error) error {
	return &TableNotFoundError{Table: table, Err: cause}
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, cause error) error {
	return &NetworkError{Operation: operation, Err: cause}
}

// NewAuthError creates a new AuthError
func NewAuthError(cause error) error {
	return &AuthError{Err: cause}
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation string, deadline time.Duration, attempts int) error {
	return &TimeoutError{Operation: operation, Deadline: deadline, Attempts: attempts}
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(attribute, want, got string) error {
	return &TypeMismatchError{Attribute: attribute, Want: want, Got: got}
}

// NewReadOnlyKeyError creates a new ReadOnlyKeyError
func NewReadOnlyKeyError(attribute string) error {
	return &ReadOnlyKeyError{Attribute: attribute}
}

// NewUnknownCommandError creates a new UnknownCommandError
func NewUnknownCommandError(name string) error {
	return &UnknownCommandError{Name: name}
}

// NewCancelledError creates a new CancelledError
func NewCancelledError(prompt string) error {
	return &CancelledError{Prompt: prompt}
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(action string) error {
	return &PermissionError{Action: action}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsTableNotFound checks if an error is a table not found error
func IsTableNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}

// IsAuth checks if an error is an authentication error
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCancelled checks if an error is a cancelled prompt
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsRetryable reports whether the engine may retry the failed operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout)
}

var kinds = []struct {
	sentinel error
	name     string
}{
	{ErrInvalidExpression, "InvalidExpression"},
	{ErrMissingOption, "MissingOption"},
	{ErrTableNotFound, "TableNotFound"},
	{ErrNetwork, "NetworkError"},
	{ErrAuth, "AuthError"},
	{ErrTimeout, "Timeout"},
	{ErrTypeMismatch, "TypeMismatch"},
	{ErrReadOnlyKey, "ReadOnlyKey"},
	{ErrUnknownCommand, "UnknownCommand"},
	{ErrCancelled, "Cancelled"},
	{ErrReadOnly, "ReadOnly"},
	{ErrPermissionDenied, "PermissionDenied"},
}

// KindOf returns the taxonomy name of err, or "Error" when err is outside the taxonomy.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.name
		}
	}
	return "Error"
}

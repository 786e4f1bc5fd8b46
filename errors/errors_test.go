/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTableNotFoundError(t *testing.T) {
	err := NewTableNotFoundError("inventory", nil)

	expected := `table "inventory" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrTableNotFound) {
		t.Error("TableNotFoundError should match ErrTableNotFound")
	}

	if !IsTableNotFound(err) {
		t.Error("IsTableNotFound should return true for TableNotFoundError")
	}
}

func TestTypeMismatchError(t *testing.T) {
	err := NewTypeMismatchError("pk", "S", "N")

	expected := `type mismatch for attribute "pk": expected S, got N`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("TypeMismatchError should match ErrTypeMismatch")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("query inventory", 50*time.Millisecond, 2)

	expected := "query inventory timed out after 2 attempt(s) of 50ms"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsTimeout(err) {
		t.Error("IsTimeout should return true for TimeoutError")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "network", err: NewNetworkError("scan", errors.New("connection reset")), expected: true},
		{name: "timeout", err: NewTimeoutError("scan", time.Second, 1), expected: true},
		{name: "auth", err: NewAuthError(errors.New("expired token")), expected: false},
		{name: "table not found", err: NewTableNotFoundError("t", nil), expected: false},
		{name: "plain", err: errors.New("boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{NewExpressionError(`pk^=`, nil), "InvalidExpression"},
		{NewMissingOptionError("table"), "MissingOption"},
		{NewTableNotFoundError("t", nil), "TableNotFound"},
		{NewNetworkError("query", errors.New("eof")), "NetworkError"},
		{NewAuthError(errors.New("denied")), "AuthError"},
		{NewTimeoutError("query", time.Second, 2), "Timeout"},
		{NewTypeMismatchError("pk", "S", "BOOL"), "TypeMismatch"},
		{NewReadOnlyKeyError("pk"), "ReadOnlyKey"},
		{NewUnknownCommandError("bla"), "UnknownCommand"},
		{NewCancelledError("name?"), "Cancelled"},
		{ErrReadOnly, "ReadOnly"},
		{NewPermissionError("shell out"), "PermissionDenied"},
		{errors.New("other"), "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewNetworkError("query", errors.New("connection refused"))
	wrapped := fmt.Errorf("query inventory: %w", original)

	if !errors.Is(wrapped, ErrNetwork) {
		t.Error("Wrapped NetworkError should still match ErrNetwork")
	}

	if KindOf(wrapped) != "NetworkError" {
		t.Error("KindOf should see through wrapping")
	}

	var netErr *NetworkError
	if !errors.As(wrapped, &netErr) || netErr.Operation != "query" {
		t.Error("errors.As should recover the NetworkError")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrInvalidExpression,
		ErrMissingOption,
		ErrTableNotFound,
		ErrNetwork,
		ErrAuth,
		ErrTimeout,
		ErrTypeMismatch,
		ErrReadOnlyKey,
		ErrUnknownCommand,
		ErrCancelled,
		ErrReadOnly,
		ErrPermissionDenied,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}

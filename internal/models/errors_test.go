package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewBanNotFoundError(t *testing.T) {
	t.Parallel()
	err := NewBanNotFoundError("789")

	if err.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", err.Code)
	}
	if err.Error() != "No ban record found for user 789" {
		t.Errorf("message = %q", err.Error())
	}

	var appErr *AppError
	if !errors.As(error(err), &appErr) {
		t.Error("expected errors.As to match *AppError")
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()
	cause := fmt.Errorf("connection refused")
	err := NewInternalError(cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "Internal server error: connection refused" {
		t.Errorf("message = %q", err.Error())
	}
}

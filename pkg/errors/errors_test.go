package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeImageLoad, "failed to decode")

	if err.Code != ErrCodeImageLoad {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeImageLoad)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvalidMode, "unknown mode")

	if !Is(err, ErrCodeInvalidMode) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is should not match a different code")
	}

	// Wrapped errors keep their code visible through the chain
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, ErrCodeInvalidMode) {
		t.Error("Is should unwrap standard error chains")
	}

	if Is(errors.New("plain"), ErrCodeInvalidMode) {
		t.Error("Is should not match plain errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeOversizedImage, "too big")); got != ErrCodeOversizedImage {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeOversizedImage)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode for plain error = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeEncoding, "pdf encoding failed")
	if got := UserMessage(err); got != "pdf encoding failed" {
		t.Errorf("UserMessage = %q, want %q", got, "pdf encoding failed")
	}

	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage = %q, want %q", got, "plain error")
	}
}

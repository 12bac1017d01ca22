package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidNode, "invalid node id: %s", "n1")
	if !strings.Contains(err.Error(), "INVALID_NODE") {
		t.Errorf("error string missing code: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "n1") {
		t.Errorf("error string missing detail: %s", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeCache, cause, "failed to write entry")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error string missing cause: %s", err.Error())
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeTimeout, "operation timed out")
	wrapped := fmt.Errorf("pipeline: %w", err)

	if !Is(wrapped, ErrCodeTimeout) {
		t.Error("Is failed to match code through wrapping")
	}
	if Is(wrapped, ErrCodeInternal) {
		t.Error("Is matched the wrong code")
	}
	if Is(stderrors.New("plain"), ErrCodeTimeout) {
		t.Error("Is matched a plain error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNotFound, "missing")); got != ErrCodeNotFound {
		t.Errorf("GetCode = %s, want NOT_FOUND", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad payload")
	if got := UserMessage(err); got != "bad payload" {
		t.Errorf("UserMessage = %q", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}

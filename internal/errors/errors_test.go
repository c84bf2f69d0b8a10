package errors

import (
	"fmt"
	"testing"
)

func TestCharxError_Error(t *testing.T) {
	err := &CharxError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "not found: card.charx",
	}

	expected := "NOT_FOUND: not found: card.charx"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("path is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "path is required" {
		t.Errorf("Message = %q, want %q", err.Message, "path is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("cards/elaine.charx")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "cards/elaine.charx" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "cards/elaine.charx")
	}
}

func TestNewInvalidArchive(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		err := NewInvalidArchive(fmt.Errorf("zip: not a valid zip file"))

		if err.Code != ErrInvalidArchive {
			t.Errorf("Code = %q, want %q", err.Code, ErrInvalidArchive)
		}
		if err.Status != 422 {
			t.Errorf("Status = %d, want 422", err.Status)
		}
		want := "not a readable archive: zip: not a valid zip file"
		if err.Message != want {
			t.Errorf("Message = %q, want %q", err.Message, want)
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInvalidArchive(nil)
		if err.Message != "not a readable archive" {
			t.Errorf("Message = %q, want %q", err.Message, "not a readable archive")
		}
	})
}

func TestNewCardMissing(t *testing.T) {
	err := NewCardMissing()

	if err.Code != ErrCardMissing {
		t.Errorf("Code = %q, want %q", err.Code, ErrCardMissing)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
}

func TestNewCardInvalid(t *testing.T) {
	err := NewCardInvalid("missing name")

	if err.Code != ErrCardInvalid {
		t.Errorf("Code = %q, want %q", err.Code, ErrCardInvalid)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["reason"] != "missing name" {
		t.Errorf("Details[reason] = %v, want %q", err.Details["reason"], "missing name")
	}
}

func TestNewWorkerFailure(t *testing.T) {
	err := NewWorkerFailure("01JC0M6KG2", "index out of range")

	if err.Code != ErrWorkerFailure {
		t.Errorf("Code = %q, want %q", err.Code, ErrWorkerFailure)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Details["job_id"] != "01JC0M6KG2" {
		t.Errorf("Details[job_id] = %v, want %q", err.Details["job_id"], "01JC0M6KG2")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("temp file write failed")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "temp file write failed" {
			t.Errorf("Message = %q, want %q", err.Message, "temp file write failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "internal error" {
			t.Errorf("Message = %q, want %q", err.Message, "internal error")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrCardMissing) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-CharxError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for non-CharxError")
		}
	})

	t.Run("wrapped CharxError", func(t *testing.T) {
		inner := NewCardInvalid("not valid JSON")
		wrapped := fmt.Errorf("parse: %w", inner)
		if !Is(wrapped, ErrCardInvalid) {
			t.Error("Is() = false, want true for wrapped CharxError")
		}
		if Is(wrapped, ErrNotFound) {
			t.Error("Is() = true, want false for wrong code on wrapped CharxError")
		}
	})
}

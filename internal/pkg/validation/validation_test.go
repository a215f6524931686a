package validation

import (
	"errors"
	"testing"

	"libraryhub/internal/core/domain"
)

type sample struct {
	Title string `json:"title" validate:"required" msg:"Title is required"`
	ISBN  string `json:"isbn" validate:"min=10,max=20" msg:"ISBN must be at least 10 characters" msg_max:"ISBN must be at most 20 characters"`
	Email string `json:"email" validate:"omitempty,email"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestStructUsesMsgTag(t *testing.T) {
	err := Struct(&sample{ISBN: "1234567890"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field != "title" || ve.Message != "Title is required" {
		t.Fatalf("unexpected error: %+v", ve)
	}

	err = Struct(&sample{Title: "x", ISBN: "123"})
	if err == nil || err.Error() != "ISBN must be at least 10 characters" {
		t.Fatalf("unexpected isbn error: %v", err)
	}
}

func TestStructUsesRuleMsgTag(t *testing.T) {
	err := Struct(&sample{Title: "x", ISBN: "123456789012345678901"})
	if err == nil || err.Error() != "ISBN must be at most 20 characters" {
		t.Fatalf("expected the max message, got %v", err)
	}
	err = Struct(&sample{Title: "x", ISBN: "12345"})
	if err == nil || err.Error() != "ISBN must be at least 10 characters" {
		t.Fatalf("expected the min message, got %v", err)
	}
}

func TestStructFallbackMessages(t *testing.T) {
	err := Struct(&sample{Title: "x", ISBN: "1234567890", Email: "nope"})
	if err == nil || err.Error() != "Invalid email address" {
		t.Fatalf("unexpected email error: %v", err)
	}

	err = Struct(&sample{Title: "x", ISBN: "1234567890", Kind: "c"})
	if err == nil || err.Error() != "kind must be one of: a b" {
		t.Fatalf("unexpected oneof error: %v", err)
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation kind")
	}
}

func TestStructValid(t *testing.T) {
	if err := Struct(&sample{Title: "x", ISBN: "1234567890", Email: "a@b.co", Kind: "a"}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

package validate

import (
	"testing"

	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
)

type sample struct {
	Name   string `json:"name" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

func TestStructPassesValidInput(t *testing.T) {
	if err := Struct(sample{Name: "oolong", Rating: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructReportsFieldDetails(t *testing.T) {
	err := Struct(sample{Rating: 9})
	if err == nil {
		t.Fatal("expected validation error")
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected detail map, got %T", typed.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
	if details["rating"] != "must be at most 5" {
		t.Fatalf("unexpected rating detail %q", details["rating"])
	}
}

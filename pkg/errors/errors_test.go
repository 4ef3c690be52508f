package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		publicMsg string
		retryable bool
	}{
		{code: CodeValidation, publicMsg: "validation failed"},
		{code: CodeUnauthorized, publicMsg: "please sign in to continue"},
		{code: CodeAuthExpired, publicMsg: "session expired", retryable: true},
		{code: CodeForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, publicMsg: "conflict detected"},
		{code: CodeRateLimit, publicMsg: "too many requests"},
		{code: CodeInternal, publicMsg: "something went wrong"},
		{code: CodeDependency, publicMsg: "service unavailable"},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.PublicMessage != "something went wrong" {
		t.Fatalf("expected internal metadata, got %q", meta.PublicMessage)
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		code   Code
	}{
		{http.StatusUnauthorized, CodeAuthExpired},
		{http.StatusForbidden, CodeForbidden},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusConflict, CodeConflict},
		{http.StatusTooManyRequests, CodeRateLimit},
		{http.StatusBadRequest, CodeValidation},
		{http.StatusUnprocessableEntity, CodeValidation},
		{http.StatusInternalServerError, CodeDependency},
		{http.StatusBadGateway, CodeDependency},
	}

	for _, tt := range tests {
		if got := FromStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestHasCodeWalksChain(t *testing.T) {
	cause := New(CodeAuthExpired, "token rejected")
	wrapped := Wrap(CodeDependency, cause, "probe failed")

	if !HasCode(wrapped, CodeDependency) {
		t.Fatalf("expected top-level code to match")
	}
	if HasCode(nil, CodeAuthExpired) {
		t.Fatalf("nil error should not match")
	}
}

func TestDumpBuildsChain(t *testing.T) {
	cause := stdErrors.New("io failure")
	err := Wrap(CodeDependency, cause, "fetch products")

	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}
}

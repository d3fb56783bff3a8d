package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "fetch products")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause with errors.Is")
	}
	if err.Error() != "DEPENDENCY_ERROR: fetch products" {
		t.Fatalf("unexpected error string: %q", err.Error())
	}
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "order not found"))

	typed := As(err)
	if typed == nil {
		t.Fatal("expected typed error through wrapping")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatal("IsCode should match through wrapping")
	}
}

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Code
	}{
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusForbidden, CodeForbidden},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusConflict, CodeConflict},
		{http.StatusTooManyRequests, CodeRateLimit},
		{http.StatusBadRequest, CodeValidation},
		{http.StatusUnprocessableEntity, CodeValidation},
		{http.StatusInternalServerError, CodeDependency},
		{http.StatusBadGateway, CodeDependency},
	}
	for _, tc := range cases {
		if got := FromStatus(tc.status); got != tc.want {
			t.Fatalf("FromStatus(%d) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestMetadataFallback(t *testing.T) {
	meta := MetadataFor(Code("UNKNOWN"))
	if meta.PublicMessage != "internal server error" {
		t.Fatalf("unexpected fallback metadata: %+v", meta)
	}
	if !MetadataFor(CodeDependency).Retryable {
		t.Fatal("dependency errors should be retryable")
	}
}

package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeExpired, http.StatusGone},
		{CodeAlreadyCompleted, http.StatusGone},
		{CodeConflict, http.StatusConflict},
		{CodeDeliveryFailed, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
		{Code("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("Code(%q).HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := Expired("this review link has expired")

	if !Is(err, ErrExpired) {
		t.Error("errors with the same code should match via Is")
	}
	if Is(err, ErrAlreadyCompleted) {
		t.Error("errors with different codes should not match")
	}
}

func TestErrorIs_MatchesThroughWrapping(t *testing.T) {
	inner := NotFound("review invite not found")
	wrapped := fmt.Errorf("validate token: %w", inner)

	if !Is(wrapped, ErrNotFound) {
		t.Error("wrapped domain errors should still match by code")
	}

	var domainErr *Error
	if !As(wrapped, &domainErr) {
		t.Fatal("As should extract the domain error")
	}
	if domainErr.Code != CodeNotFound {
		t.Errorf("Code = %q, want %q", domainErr.Code, CodeNotFound)
	}
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := DeliveryFailed("failed to send review invite email").WithCause(cause)

	if !Is(err, ErrDeliveryFailed) {
		t.Error("WithCause should preserve the code")
	}
	if Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
	if err.Error() != "failed to send review invite email: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWithDetails(t *testing.T) {
	err := ValidationWithDetails("missing required fields", []string{"recipient_email", "review_type"})

	if err.HTTPStatus() != http.StatusBadRequest {
		t.Errorf("HTTPStatus() = %d, want 400", err.HTTPStatus())
	}
	details, ok := err.Details.([]string)
	if !ok || len(details) != 2 {
		t.Errorf("Details = %v", err.Details)
	}
}

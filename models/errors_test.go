package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestScrapeError_Error(t *testing.T) {
	err := NewHTTPError("https://example.com", 404)

	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	for _, part := range []string{ErrCodeHTTP, "HTTP 404", "https://example.com"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("Error() = %q, missing %q", err.Error(), part)
		}
	}
}

func TestScrapeError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewScrapeError(ErrCodeNavigation, "Failed to load page", "https://example.com", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is must see through ScrapeError")
	}

	var se *ScrapeError
	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.As(wrapped, &se) {
		t.Fatal("errors.As failed on wrapped ScrapeError")
	}
	if se.Code != ErrCodeNavigation {
		t.Errorf("Code = %q, want %q", se.Code, ErrCodeNavigation)
	}
}

func TestIsRateLimited(t *testing.T) {
	err := NewRateLimitError("https://example.com", nil)
	if !IsRateLimited(err) {
		t.Error("IsRateLimited = false for a rate-limit error")
	}
	if !IsRateLimited(fmt.Errorf("retry wrapper: %w", err)) {
		t.Error("IsRateLimited must see through wrapping")
	}
	if IsRateLimited(NewHTTPError("https://example.com", 500)) {
		t.Error("IsRateLimited = true for an HTTP error")
	}
	if IsRateLimited(errors.New("plain")) {
		t.Error("IsRateLimited = true for a plain error")
	}
}

func TestIsChallengeBlocked(t *testing.T) {
	err := NewScrapeError(ErrCodeChallengeBlocked, "CAPTCHA detected", "https://example.com", nil)
	if !IsChallengeBlocked(err) {
		t.Error("IsChallengeBlocked = false for a challenge error")
	}
	if IsChallengeBlocked(NewRateLimitError("https://example.com", nil)) {
		t.Error("IsChallengeBlocked = true for a rate-limit error")
	}
}

package models

import (
	"errors"
	"fmt"
)

// Error codes carried by ScrapeError. The string form is stable so callers
// can log and triage on it.
const (
	ErrCodeTimeout          = "SCRAPE_TIMEOUT"
	ErrCodeNavigation       = "NAVIGATION_FAILED"
	ErrCodeHTTP             = "HTTP_ERROR"
	ErrCodeChallengeBlocked = "CHALLENGE_BLOCKED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeBrowserCrash     = "BROWSER_CRASH"
	ErrCodeExtraction       = "CONTENT_EXTRACTION_FAILED"
)

// ScrapeError is the typed error for every failure inside a scrape call.
// It carries the URL that failed and, for HTTP failures, the status code.
// It implements the error interface and supports wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	URL     string
	Status  int   // HTTP status, 0 when not applicable
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a ScrapeError for the given URL.
func NewScrapeError(code, message, url string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, URL: url, Err: err}
}

// NewHTTPError creates an HTTP-status failure, e.g. "HTTP 404".
func NewHTTPError(url string, status int) *ScrapeError {
	return &ScrapeError{
		Code:    ErrCodeHTTP,
		Message: fmt.Sprintf("HTTP %d", status),
		URL:     url,
		Status:  status,
	}
}

// NewRateLimitError signals the caller should back off before retrying
// the same target. The scraper never raises it from its own logic, but
// upstream retry policies must be able to recognize it.
func NewRateLimitError(url string, err error) *ScrapeError {
	return &ScrapeError{
		Code:    ErrCodeRateLimited,
		Message: "rate limited",
		URL:     url,
		Err:     err,
	}
}

// IsRateLimited reports whether err is (or wraps) a rate-limit error.
func IsRateLimited(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Code == ErrCodeRateLimited
}

// IsChallengeBlocked reports whether err means a CAPTCHA or bot-mitigation
// interstitial stopped the scrape.
func IsChallengeBlocked(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Code == ErrCodeChallengeBlocked
}

package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. Gotenberg error
// bodies are short text; a misbehaving proxy may send far more.
const maxErrBodySize = 4 << 10 // 4KB

// execFn represents a func to operate on a response.
type execFn func(response *http.Response) error

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrServerError is joined with [ErrUnexpectedStatusCode] for 5xx answers.
	ErrServerError = errors.New("server error")
	// ErrMaxRetriesExceeded is wrapped by [MaxRetriesExceededError].
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// UnexpectedStatusError is returned when Gotenberg answers with a
// non-2xx status code.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Header     http.Header
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

func statusErr(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	case code >= http.StatusInternalServerError:
		return errors.Join(ErrUnexpectedStatusCode, ErrServerError)
	default:
		return ErrUnexpectedStatusCode
	}
}

// MaxRetriesExceededError is returned when every attempt of a retried
// request ended in a 5xx answer.
type MaxRetriesExceededError struct {
	Attempts int
	Last     *UnexpectedStatusError
}

func (e *MaxRetriesExceededError) Error() string {
	return fmt.Sprintf("%v after %d attempt(s): %v", ErrMaxRetriesExceeded, e.Attempts, e.Last)
}

func (e *MaxRetriesExceededError) Unwrap() []error {
	return []error{ErrMaxRetriesExceeded, e.Last}
}

// HealthStatus is the answer of Gotenberg's health check.
type HealthStatus struct {
	Status  string                  `json:"status"`
	Details map[string]ModuleHealth `json:"details"`
}

// ModuleHealth is the state of one Gotenberg module.
type ModuleHealth struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Up reports whether Gotenberg considers itself healthy.
func (h *HealthStatus) Up() bool { return h.Status == "up" }

// Chromium returns the Chromium module state.
func (h *HealthStatus) Chromium() ModuleHealth { return h.Details["chromium"] }

// LibreOffice returns the LibreOffice module state.
func (h *HealthStatus) LibreOffice() ModuleHealth { return h.Details["libreoffice"] }

package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/doctor-directory/internal/domain/repository"
)

var (
	ErrDuplicateSubmission = errors.New("doctor submission already in progress or completed")
)

// Upstream error codes, also sent to API clients in the X-Error-Code header.
const (
	CodeUpstreamUnreachable = "upstream_unreachable"
	CodeUpstreamStatus      = "upstream_status"
	CodeUpstreamInvalidBody = "upstream_invalid_body"
)

// ValidationError carries per-field messages for the add-doctor form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+" "+v)
	}
	return "invalid doctor: " + strings.Join(parts, "; ")
}

// UpstreamError is a terminal failure talking to the doctor backend.
type UpstreamError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstreamError(err error, relay *repository.Relay, fallback string) *UpstreamError {
	ue := &UpstreamError{Code: CodeUpstreamUnreachable, Message: fallback, Err: err}
	if relay != nil {
		ue.Status = relay.Status
	}
	if errors.Is(err, repository.ErrBackendInvalidBody) {
		ue.Code = CodeUpstreamInvalidBody
	}
	return ue
}

func statusError(relay *repository.Relay, fallback string) *UpstreamError {
	return &UpstreamError{Code: CodeUpstreamStatus, Status: relay.Status, Message: backendMessage(relay.Body, fallback)}
}

// backendMessage pulls a human readable message out of a backend error body.
func backendMessage(body []byte, fallback string) string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if s, ok := payload.Error.(string); ok && s != "" {
		return s
	}
	if payload.Message != "" {
		return payload.Message
	}
	return fallback
}

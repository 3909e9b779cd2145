package model

import (
	"fmt"
	"strings"
	"time"
)

// MaxBriefLen bounds the brief accepted over the HTTP and MCP transports.
// The registry itself accepts any brief.
const MaxBriefLen = 16 * 1024

// APIResponse is the standard response envelope for all HTTP API responses.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// StartRunRequest is the request body for POST /v1/runs.
type StartRunRequest struct {
	Brief string `json:"brief"`
	Mode  string `json:"mode,omitempty"`
}

// Validate checks transport-level limits on a start request and returns the
// parsed mode.
func (r StartRunRequest) Validate() (Mode, error) {
	if strings.TrimSpace(r.Brief) == "" {
		return "", fmt.Errorf("brief is required")
	}
	if len(r.Brief) > MaxBriefLen {
		return "", fmt.Errorf("brief exceeds maximum length of %d bytes", MaxBriefLen)
	}
	return ParseMode(r.Mode)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	StubMode      bool   `json:"stub_mode"`
}

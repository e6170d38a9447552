package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestFailed = errors.New("backend request failed")
	ErrStreamEnded   = errors.New("stream ended before completion")
)

// APIError is a non-2xx response, or an error event on a stream (Status 0).
// Detail carries the server's human-readable
// reason when the body follows the {"detail": ...} convention.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		// Reported in-band on a stream that had already started.
		return fmt.Sprintf("%s: %s", ErrRequestFailed, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", ErrRequestFailed, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrRequestFailed, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// Detail extracts a human-readable reason from err, or "" if err is not an
// APIError.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// parseDetail understands {"detail": "text"}, {"detail": {"message": "text"}}
// and {"error": "text"}; anything else falls back to the trimmed body.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}

	if len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			return text
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Detail, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		return strings.TrimSpace(string(envelope.Detail))
	}

	if envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}

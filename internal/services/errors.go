package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/mlcc/internal/shared"
)

// APIError is returned for any non-2xx response of the channel service.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is lets callers match status classes with [errors.Is] against shared sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case shared.ErrChannelNotFound:
		return e.StatusCode == http.StatusNotFound
	case shared.ErrThrottled:
		return e.StatusCode == http.StatusTooManyRequests
	case shared.ErrServiceUnavailable:
		return e.StatusCode == http.StatusBadGateway || e.StatusCode == http.StatusServiceUnavailable
	}
	return false
}

// newAPIError extracts {"message": ...} from body when the service sent one.
func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, StatusCode: status}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 256 {
		apiErr.Message = text
	}
	return apiErr
}

package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrThrottled          = fmt.Errorf("request throttled")
	ErrChannelNotFound    = fmt.Errorf("channel not found")
	ErrInputNotFound      = fmt.Errorf("input not found")
	ErrGraphicNotFound    = fmt.Errorf("graphic not found")
	ErrMalformedResponse  = fmt.Errorf("malformed response")

	// Operation guards
	ErrInvalidState = fmt.Errorf("operation not allowed in current channel state")
	ErrInputActive  = fmt.Errorf("input already active")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")
)

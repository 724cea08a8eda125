package errors

import (
	"encoding/json"
	"net/http"
)

// ToJSON serializes the error into the client-facing envelope.
func (e *APIError) ToJSON() ([]byte, error) {
	env := Envelope{}
	env.Error.Code = e.HTTPStatus
	env.Error.Message = e.Message
	env.Error.Status = e.statusLabel()
	env.Error.Type = e.Type
	if e.Details != nil {
		env.Error.Details = e.Details
	}
	return json.Marshal(env)
}

func (e *APIError) statusLabel() string {
	switch e.HTTPStatus {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "PERMISSION_DENIED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusTooManyRequests:
		return "RESOURCE_EXHAUSTED"
	case http.StatusInternalServerError:
		return "INTERNAL"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	case http.StatusGatewayTimeout:
		return "DEADLINE_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// IsRetryable reports whether a client may reasonably retry the request.
func (e *APIError) IsRetryable() bool {
	switch e.HTTPStatus {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusRequestTimeout:
		return true
	}
	switch e.Code {
	case "timeout", "connection_error", "network_error", "dns_error":
		return true
	}
	return false
}

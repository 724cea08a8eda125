package errors

// APIError represents a standardized error surfaced by the service,
// whether it originated upstream or locally.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	Type       string
	Details    map[string]interface{}
}

func (e *APIError) Error() string { return e.Message }

// Envelope mirrors the JSON error body returned to clients. The shape
// follows the upstream generative API so stream consumers only need
// one error decoder.
type Envelope struct {
	Error struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Status  string                 `json:"status"`
		Type    string                 `json:"type,omitempty"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

func New(httpStatus int, code, errType, message string) *APIError {
	return &APIError{HTTPStatus: httpStatus, Code: code, Type: errType, Message: message}
}

func (e *APIError) WithDetails(details map[string]interface{}) *APIError {
	e.Details = details
	return e
}

package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"slidecast-go/internal/constants"
	apperrors "slidecast-go/internal/errors"

	"github.com/gin-gonic/gin"
)

// ExplainParams is a parsed and validated explain request.
type ExplainParams struct {
	Topic  string `json:"topic"`
	Style  string `json:"style"`
	Slides int    `json:"slides"`
	Model  string `json:"model"`
}

// ValidationError carries a client-facing request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// APIError converts the validation failure into the standard envelope.
func (e *ValidationError) APIError() *apperrors.APIError {
	return apperrors.New(http.StatusBadRequest, "invalid_request_error", "invalid_request_error", e.Message)
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ParseExplainRequest decodes and validates the explain request body.
// Missing fields fall back to the given defaults; the topic is required.
// The model name ends up in the gin context for request logging.
func ParseExplainRequest(c *gin.Context, defaultModel string, defaultSlides int) (*ExplainParams, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxRequestBodySize)

	var params ExplainParams
	if err := c.ShouldBindJSON(&params); err != nil {
		return nil, newValidationError("invalid json: %s", err.Error())
	}

	params.Topic = strings.TrimSpace(params.Topic)
	if params.Topic == "" {
		return nil, newValidationError("missing required field: topic")
	}
	if len(params.Topic) > constants.MaxTopicLength {
		return nil, newValidationError("topic exceeds %d characters", constants.MaxTopicLength)
	}

	params.Style = strings.TrimSpace(params.Style)

	if params.Slides < 0 {
		return nil, newValidationError("slides must be positive")
	}
	if params.Slides == 0 {
		params.Slides = defaultSlides
	}
	if params.Slides > constants.MaxSlideTarget {
		return nil, newValidationError("slides exceeds maximum of %d", constants.MaxSlideTarget)
	}

	if params.Model == "" {
		params.Model = defaultModel
	}
	c.Set("model", params.Model)
	c.Set("topic", params.Topic)

	return &params, nil
}

// DecodeJSONBody decodes a size-capped JSON request body into dst.
func DecodeJSONBody(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxRequestBodySize)
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(dst); err != nil {
		return newValidationError("invalid json: %s", err.Error())
	}
	return nil
}

package common

import (
	"net/http"

	apperrors "slidecast-go/internal/errors"

	"github.com/gin-gonic/gin"
)

// AbortWithAPIError serializes the error envelope and aborts the request.
func AbortWithAPIError(c *gin.Context, err *apperrors.APIError) {
	if err == nil {
		err = apperrors.New(http.StatusInternalServerError, "server_error", "server_error", "unknown error")
	}

	payload, marshalErr := err.ToJSON()
	if marshalErr != nil {
		c.JSON(safeStatus(err.HTTPStatus), gin.H{
			"error": gin.H{
				"code":    safeStatus(err.HTTPStatus),
				"message": err.Message,
				"type":    err.Type,
			},
		})
		c.Abort()
		return
	}

	c.Data(safeStatus(err.HTTPStatus), "application/json", payload)
	c.Abort()
}

// AbortWithError constructs an APIError from the provided fields and aborts.
func AbortWithError(c *gin.Context, status int, typ, message string) {
	if message == "" {
		message = "internal error"
	}
	AbortWithAPIError(c, apperrors.New(safeStatus(status), typ, typ, message))
}

func safeStatus(status int) int {
	if status < 100 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

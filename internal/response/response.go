// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ukydev/fleetquote/internal/xerrors"
)

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
	Stage   string      `json:"stage,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Error aborts the chain and sends an error response.
func Error(c *gin.Context, code int, message string, err error) {
	c.Abort()

	resp := Response{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(code, resp)
}

func BadRequest(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// FromError maps a service error onto a status code. Errors outside the
// taxonomy are reported as 500 without their text.
func FromError(c *gin.Context, err error) {
	var ve *xerrors.ValidationError
	var ce *xerrors.CalculationError

	switch {
	case errors.As(err, &ve):
		c.Abort()
		c.JSON(http.StatusBadRequest, Response{Message: "validation failed", Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &ce):
		c.Abort()
		c.JSON(http.StatusUnprocessableEntity, Response{Message: "calculation failed", Error: ce.Error(), Stage: ce.Stage})
	case errors.Is(err, xerrors.ErrInvalidInput):
		Error(c, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, "resource not found", nil)
	case errors.Is(err, xerrors.ErrForbidden):
		Error(c, http.StatusForbidden, "insufficient permissions", nil)
	case errors.Is(err, xerrors.ErrConflict):
		Error(c, http.StatusConflict, "resource already exists", nil)
	default:
		Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the success envelope.
type APIResponse[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	RequestID  string `json:"requestId,omitempty"`
}

// APIError is the failure envelope; Errors carries field-level details when present.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Errors     any    `json:"errors,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}

// Success writes data with the given status (200 when zero).
func Success[T any](ctx *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
		RequestID:  ctx.GetString("request_id"),
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes a failure envelope with the given status (400 when zero).
func Error(ctx *gin.Context, status int, message string, details any) APIError {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIError{
		StatusCode: status,
		Success:    false,
		Message:    message,
		Errors:     details,
		RequestID:  ctx.GetString("request_id"),
	}
	ctx.JSON(status, resp)
	return resp
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string, details any) {
	Error(ctx, status, message, details)
	ctx.Abort()
}

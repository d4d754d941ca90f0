package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Error     any       `json:"error,omitempty"`
}

// Error aborts the request with an error envelope.
func Error(ctx *gin.Context, status int, message string, err any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, ErrorResponse{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	})
}

// Unauthorized aborts with 401 and a Bearer challenge.
func Unauthorized(ctx *gin.Context, message string) {
	ctx.Header("WWW-Authenticate", "Bearer")
	Error(ctx, http.StatusUnauthorized, message, nil)
}

// Internal aborts with 500 without exposing the cause.
func Internal(ctx *gin.Context) {
	Error(ctx, http.StatusInternalServerError, "internal server error", nil)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the error envelope every endpoint returns: the HTTP status
// repeated in the body, a short human message and optional detail.
type APIError struct {
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, message string, detail interface{}) {
	ctx.JSON(status, APIError{
		Status:    status,
		Message:   message,
		Error:     detail,
		RequestID: requestIDFrom(ctx),
	})
}

func RespondBadRequest(ctx *gin.Context, message string, detail interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, detail)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}

// RespondData wraps successful payloads.
func RespondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{"data": data})
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the shared response helpers. Every error leaves through
// fail() as an ErrorResponse with a stable code; 5xx responses are logged with
// the request-scoped logger.
//
// Example error response:
//
//	HTTP/1.1 500 Internal Server Error
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "storage_unavailable",
//	  "message": "Response ledger unavailable",
//	  "response_id": "9ff5ec5044d23303"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Notho-freedom/Autoresponder/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"validation_failed"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Missing required fields: email and phone are mandatory"`
	// Fingerprint of the submission, when it was computed before the failure
	ResponseID string `json:"response_id,omitempty" example:"9ff5ec5044d23303"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	failWithID(c, status, code, msg, "")
}

// failWithID is fail with the response id attached to body and log line.
func failWithID(c *gin.Context, status int, code, msg, responseID string) {
	resp := ErrorResponse{
		RequestID:  c.Writer.Header().Get("X-Request-ID"),
		Code:       code,
		Message:    msg,
		ResponseID: responseID,
	}

	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code)
		if responseID != "" {
			ev = ev.Str("response_id", responseID)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

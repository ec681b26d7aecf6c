// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These codes give webhook callers and admin clients a stable,
// machine-readable error taxonomy next to the human-readable message.
// They are lowercase snake_case and are passed to fail() together with
// the HTTP status.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "validation_failed",
//	  "message": "Missing required fields: email and phone are mandatory"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodePayloadTooLarge  = "payload_too_large"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeValidation         = "validation_failed"
	ErrCodeStorageUnavailable = "storage_unavailable"
)

// User-facing messages. 5xx messages stay generic; the response id is the
// correlation handle.
const (
	msgMissingFields  = "Missing required fields: email and phone are mandatory"
	msgInvalidEmail   = "Invalid email address"
	msgInvalidPhone   = "Invalid phone number"
	msgInvalidJSON    = "Request body must be a JSON object"
	msgBodyTooLarge   = "Request body too large"
	msgStorageDown    = "Response ledger unavailable"
	msgInternal       = "Internal server error"
	msgNotFound       = "response not found"
	msgInvalidID      = "invalid response id"
	msgAlreadyHandled = "This response has already been processed"
	msgExportFailed   = "export failed"
)

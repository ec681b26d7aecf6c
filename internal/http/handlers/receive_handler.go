// Webhook intake.
//
//   - POST /receive   (bearer auth)
package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Notho-freedom/Autoresponder/internal/intake"
	"github.com/Notho-freedom/Autoresponder/internal/services"
)

//
// DTOs
//

// Processed reports per-channel success for one submission.
type Processed struct {
	Email bool `json:"email" example:"true"`
	SMS   bool `json:"sms" example:"false"`
}

// ReceiveResponse is returned for ok (200) and partial (207) outcomes.
type ReceiveResponse struct {
	Status     string    `json:"status" example:"partial"`
	ResponseID string    `json:"response_id" example:"9ff5ec5044d23303"`
	Processed  Processed `json:"processed"`
	Timestamp  string    `json:"timestamp" example:"2025-06-01T10:15:00Z"`
	Errors     []string  `json:"errors,omitempty" example:"SMS sending failed"`
	Warnings   []string  `json:"warnings,omitempty" example:"response could not be recorded"`
}

// AlreadyProcessedResponse is returned when the fingerprint is in the ledger.
type AlreadyProcessedResponse struct {
	Status     string `json:"status" example:"already_processed"`
	Message    string `json:"message" example:"This response has already been processed"`
	ResponseID string `json:"response_id" example:"9ff5ec5044d23303"`
}

// Receive godoc
// @ID          receiveSubmission
// @Summary     Receive a form submission
// @Description Normalizes a form webhook (direct or namedValues shape), sends the email and SMS confirmations once per fingerprint, and records the outcome.
// @Tags        Webhook
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  object  true  "Form payload: {email, phone, name?, timestamp?} or {namedValues: {...}, timestamp?}"
//
// @Success     200  {object}  handlers.ReceiveResponse           "Both channels succeeded"
// @Success     207  {object}  handlers.ReceiveResponse           "At most one channel succeeded"
// @Failure     400  {object}  handlers.ErrorResponse             "Missing or invalid fields"
// @Failure     401  {object}  handlers.ErrorResponse             "Unauthorized"
// @Failure     413  {object}  handlers.ErrorResponse             "Body too large"
// @Failure     429  {object}  handlers.ErrorResponse             "Too many requests"
// @Failure     500  {object}  handlers.ErrorResponse             "Ledger unavailable"
// @Router      /receive [post]
func (h *Handlers) Receive(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, msgBodyTooLarge)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}

	sub, err := h.norm.Normalize(raw)
	switch {
	case err == nil:
	case errors.Is(err, intake.ErrMissingRequiredField):
		fail(c, http.StatusBadRequest, ErrCodeValidation, msgMissingFields)
		return
	case errors.Is(err, intake.ErrInvalidEmail):
		fail(c, http.StatusBadRequest, ErrCodeValidation, msgInvalidEmail)
		return
	case errors.Is(err, intake.ErrInvalidPhone):
		fail(c, http.StatusBadRequest, ErrCodeValidation, msgInvalidPhone)
		return
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}

	rep, err := h.dispatch.Dispatch(c.Request.Context(), sub)
	if err != nil {
		id := ""
		if rep != nil {
			id = rep.ResponseID
		}
		var se *services.StorageError
		if errors.As(err, &se) {
			_ = c.Error(err)
			failWithID(c, http.StatusInternalServerError, ErrCodeStorageUnavailable, msgStorageDown, id)
			return
		}
		_ = c.Error(err)
		failWithID(c, http.StatusInternalServerError, ErrCodeInternal, msgInternal, id)
		return
	}

	if rep.Status == services.StatusAlreadyProcessed {
		ok(c, http.StatusOK, AlreadyProcessedResponse{
			Status:     string(rep.Status),
			Message:    msgAlreadyHandled,
			ResponseID: rep.ResponseID,
		})
		return
	}

	code := http.StatusOK
	if rep.Status == services.StatusPartial {
		code = http.StatusMultiStatus
	}
	ok(c, code, ReceiveResponse{
		Status:     string(rep.Status),
		ResponseID: rep.ResponseID,
		Processed:  Processed{Email: rep.Email.Succeeded, SMS: rep.SMS.Succeeded},
		Timestamp:  rep.Timestamp.UTC().Format(time.RFC3339),
		Errors:     rep.Errors(),
		Warnings:   rep.Warnings,
	})
}

// Ledger administration (bearer auth).
//
//   - GET    /responses          (list, newest first)
//   - GET    /responses/export   (XLSX)
//   - GET    /responses/{id}     (read back)
//   - DELETE /responses/{id}    (purge)
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
	"github.com/Notho-freedom/Autoresponder/internal/services"
	"github.com/Notho-freedom/Autoresponder/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListResponsesResponse wraps the admin listing. Total counts the whole
// ledger; Count is the size of this page.
type ListResponsesResponse struct {
	Total     int64                `json:"total" example:"250"`
	Count     int                  `json:"count" example:"100"`
	Responses []domain.LedgerEntry `json:"responses"`
}

// responseErr maps service errors from the admin endpoints.
func responseErr(c *gin.Context, err error) {
	var se *services.StorageError
	switch {
	case errors.Is(err, services.ErrInvalidResponseID):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidID)
	case errors.Is(err, services.ErrResponseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
	case errors.As(err, &se):
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeStorageUnavailable, msgStorageDown)
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, msgInternal)
	}
}

func (h *Handlers) limit(c *gin.Context) int {
	return utils.ClampLimit(c.Query("limit"), h.opts.DefaultLimit, h.opts.MaxLimit)
}

// ListResponses godoc
// @ID          listResponses
// @Summary     List processed responses
// @Description Returns ledger entries, newest first. limit defaults to 100 and is clamped to the configured maximum. total is the ledger size, count the page size.
// @Tags        Responses
// @Produce     json
// @Security    BearerAuth
// @Param       limit  query     int  false  "Max entries"  minimum(1)
// @Success     200    {object}  handlers.ListResponsesResponse
// @Failure     401    {object}  handlers.ErrorResponse
// @Failure     500    {object}  handlers.ErrorResponse
// @Router      /responses [get]
func (h *Handlers) ListResponses(c *gin.Context) {
	items, err := h.responses.List(c.Request.Context(), h.limit(c))
	if err != nil {
		responseErr(c, err)
		return
	}
	total, err := h.responses.Count(c.Request.Context())
	if err != nil {
		responseErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListResponsesResponse{Total: total, Count: len(items), Responses: items})
}

// GetResponse godoc
// @ID          getResponse
// @Summary     Read back one response
// @Tags        Responses
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Response ID (16 hex chars)"
// @Success     200  {object}  domain.LedgerEntry
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /responses/{id} [get]
func (h *Handlers) GetResponse(c *gin.Context) {
	e, err := h.responses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		responseErr(c, err)
		return
	}
	ok(c, http.StatusOK, e)
}

// DeleteResponse godoc
// @ID          deleteResponse
// @Summary     Purge one response
// @Description Removes the ledger entry so an identical submission is processed again.
// @Tags        Responses
// @Security    BearerAuth
// @Param       id   path  string  true  "Response ID (16 hex chars)"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /responses/{id} [delete]
func (h *Handlers) DeleteResponse(c *gin.Context) {
	if err := h.responses.Purge(c.Request.Context(), c.Param("id")); err != nil {
		responseErr(c, err)
		return
	}
	noContent(c)
}

// ExportResponses godoc
// @ID          exportResponses
// @Summary     Export responses as XLSX
// @Tags        Responses
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       limit  query  int  false  "Max entries"  minimum(1)
// @Success     200    {file}  file
// @Failure     401    {object}  handlers.ErrorResponse
// @Failure     500    {object}  handlers.ErrorResponse
// @Router      /responses/export [get]
func (h *Handlers) ExportResponses(c *gin.Context) {
	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.responses.Export(c.Request.Context(), h.limit(c), &buf); err != nil {
		var se *services.StorageError
		if errors.As(err, &se) {
			responseErr(c, err)
			return
		}
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, msgExportFailed)
		return
	}
	name := "responses-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

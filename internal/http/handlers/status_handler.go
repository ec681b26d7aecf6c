// Service info and health.
//
//   - GET /        (service info)
//   - GET /status  (channel reachability, ledger health, stats)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
)

// InfoResponse describes the running service.
type InfoResponse struct {
	Service string `json:"service" example:"Form Autoresponder"`
	Status  string `json:"status" example:"running"`
	Version string `json:"version" example:"1.0.0"`
}

// ServicesHealth reports reachability per dependency.
type ServicesHealth struct {
	Email    bool `json:"email"`
	SMS      bool `json:"sms"`
	Database bool `json:"database"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    string              `json:"status" example:"operational"`
	Timestamp string              `json:"timestamp" example:"2025-06-01T10:15:00Z"`
	Services  ServicesHealth      `json:"services"`
	Stats     *domain.LedgerStats `json:"stats"`
}

// Info godoc
// @ID          serviceInfo
// @Summary     Service info
// @Tags        Status
// @Produce     json
// @Success     200  {object}  handlers.InfoResponse
// @Router      / [get]
func (h *Handlers) Info(c *gin.Context) {
	ok(c, http.StatusOK, InfoResponse{
		Service: h.opts.ServiceName,
		Status:  "running",
		Version: h.opts.Version,
	})
}

// Status godoc
// @ID          serviceStatus
// @Summary     Service status
// @Description Probes the email and SMS providers and the ledger. "operational" requires both channels; stats is null when the ledger is unreachable.
// @Tags        Status
// @Produce     json
// @Success     200  {object}  handlers.StatusResponse
// @Router      /status [get]
func (h *Handlers) Status(c *gin.Context) {
	rep := h.status.Check(c.Request.Context())

	state := "degraded"
	if rep.Operational {
		state = "operational"
	}
	ok(c, http.StatusOK, StatusResponse{
		Status:    state,
		Timestamp: rep.Timestamp.UTC().Format(time.RFC3339),
		Services: ServicesHealth{
			Email:    rep.Email,
			SMS:      rep.SMS,
			Database: rep.Database,
		},
		Stats: rep.Stats,
	})
}

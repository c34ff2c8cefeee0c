package handler

import (
	"errors"
	"net/http"

	"lumo/internal/services"
	"lumo/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// RelayHandler exposes the relay worker's operational surface to
// authenticated organizers.
type RelayHandler struct {
	worker *services.RelayWorker
}

func NewRelayHandler(worker *services.RelayWorker) *RelayHandler {
	return &RelayHandler{worker: worker}
}

// Status reports the most recent pass, if any.
func (h *RelayHandler) Status(c *gin.Context) {
	summary := h.worker.LastSummary()
	if summary == nil {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"ran": false}))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"ran": true, "last_pass": summary}))
}

// Run triggers a pass out of schedule. A pass already in flight is not an
// error worth a retry storm, so it maps to 409.
func (h *RelayHandler) Run(c *gin.Context) {
	summary, err := h.worker.RunPass(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrPassInProgress) {
			c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), "PASS_IN_PROGRESS"))
			return
		}
		status, code := statusAndCode(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(summary))
}

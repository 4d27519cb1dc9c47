package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
	"github.com/noah-isme/civic-triage-api/pkg/response"
)

type lifecycleService interface {
	UpdateStatus(ctx context.Context, complaintID string, req dto.UpdateStatusRequest, actor *models.JWTClaims) (*dto.StatusTransitionResult, error)
	Activities(ctx context.Context, complaintID string) ([]models.ComplaintActivity, error)
}

// LifecycleHandler exposes status transitions and the audit trail.
type LifecycleHandler struct {
	lifecycle lifecycleService
}

// NewLifecycleHandler constructs the handler.
func NewLifecycleHandler(lifecycle lifecycleService) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle}
}

// UpdateStatus godoc
// @Summary Change complaint status
// @Description Officials of the complaint's municipality and staff may move a complaint to any status. Requesting the current status reports NO_CHANGE.
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /complaints/{id}/status [patch]
func (h *LifecycleHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.lifecycle.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Activities godoc
// @Summary Complaint audit trail
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/activities [get]
func (h *LifecycleHandler) Activities(c *gin.Context) {
	activities, err := h.lifecycle.Activities(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}

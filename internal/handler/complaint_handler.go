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

type complaintSubmitter interface {
	Submit(ctx context.Context, req dto.SubmitComplaintRequest, actor *models.JWTClaims) (*models.Complaint, error)
}

type complaintReader interface {
	Get(ctx context.Context, id string) (*dto.ComplaintDetail, error)
	List(ctx context.Context, query dto.ComplaintQuery, actor *models.JWTClaims) ([]models.Complaint, *models.Pagination, error)
	ToggleUpvote(ctx context.Context, complaintID string, actor *models.JWTClaims) (*dto.UpvoteResult, error)
	AddComment(ctx context.Context, complaintID string, req dto.CreateCommentRequest, actor *models.JWTClaims) (*models.ComplaintComment, error)
	Comments(ctx context.Context, complaintID string) ([]models.ComplaintComment, error)
}

// ComplaintHandler exposes complaint submission, reads, upvotes and comments.
type ComplaintHandler struct {
	moderation complaintSubmitter
	complaints complaintReader
}

// NewComplaintHandler constructs the handler.
func NewComplaintHandler(moderation complaintSubmitter, complaints complaintReader) *ComplaintHandler {
	return &ComplaintHandler{moderation: moderation, complaints: complaints}
}

// Submit godoc
// @Summary Submit a complaint
// @Description Runs the complaint through the moderation gate. Low-trust submitters and low-urgency complaints are rejected.
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body dto.SubmitComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	var req dto.SubmitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	complaint, err := h.moderation.Submit(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// List godoc
// @Summary List complaints
// @Tags Complaints
// @Produce json
// @Param municipality_id query string false "Municipality ID"
// @Param status query string false "Status"
// @Param department query string false "Department"
// @Param mine query bool false "Only the caller's complaints"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	var query dto.ComplaintQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	complaints, pagination, err := h.complaints.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, pagination)
}

// Get godoc
// @Summary Get complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	detail, err := h.complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Upvote godoc
// @Summary Toggle upvote
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/upvote [post]
func (h *ComplaintHandler) Upvote(c *gin.Context) {
	result, err := h.complaints.ToggleUpvote(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AddComment godoc
// @Summary Comment on a complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Router /complaints/{id}/comments [post]
func (h *ComplaintHandler) AddComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	comment, err := h.complaints.AddComment(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// Comments godoc
// @Summary List complaint comments
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/comments [get]
func (h *ComplaintHandler) Comments(c *gin.Context) {
	comments, err := h.complaints.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments, nil)
}

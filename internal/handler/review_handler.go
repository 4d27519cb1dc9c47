package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	"github.com/noah-isme/civic-triage-api/pkg/response"
)

type reviewService interface {
	Create(ctx context.Context, req dto.CreateReviewRequest, actor *models.JWTClaims) (*models.ComplaintReview, error)
	Mine(ctx context.Context, actor *models.JWTClaims) ([]models.ComplaintReview, error)
}

// ReviewHandler exposes complaint reviews.
type ReviewHandler struct {
	reviews reviewService
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(reviews reviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create godoc
// @Summary Review a resolved complaint
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body dto.CreateReviewRequest true "Review"
// @Success 201 {object} response.Envelope
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	review, err := h.reviews.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// Mine godoc
// @Summary List my reviews
// @Tags Reviews
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reviews/mine [get]
func (h *ReviewHandler) Mine(c *gin.Context) {
	reviews, err := h.reviews.Mine(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/pkg/response"
)

type similarFinder interface {
	FindSimilar(ctx context.Context, query dto.SimilarQuery) ([]dto.SimilarComplaint, error)
}

// DuplicateHandler exposes the duplicate check run before submission.
type DuplicateHandler struct {
	duplicates similarFinder
}

// NewDuplicateHandler constructs the handler.
func NewDuplicateHandler(duplicates similarFinder) *DuplicateHandler {
	return &DuplicateHandler{duplicates: duplicates}
}

// Similar godoc
// @Summary Find similar open complaints
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body dto.SimilarQuery true "Prospective complaint"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /complaints/similar [post]
func (h *DuplicateHandler) Similar(c *gin.Context) {
	var query dto.SimilarQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	matches, err := h.duplicates.FindSimilar(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil, map[string]interface{}{"count": len(matches)})
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/pkg/response"
)

type complaintRanker interface {
	Rank(ctx context.Context, municipalityID *string, page int) (*dto.RankedPage, error)
}

// RankingHandler serves the ranked complaint feed.
type RankingHandler struct {
	ranking complaintRanker
}

// NewRankingHandler constructs the handler.
func NewRankingHandler(ranking complaintRanker) *RankingHandler {
	return &RankingHandler{ranking: ranking}
}

// Ranked godoc
// @Summary Ranked open complaints
// @Description Pending and in-progress complaints ordered by score, eight per page.
// @Tags Complaints
// @Produce json
// @Param municipality_id query string false "Municipality ID"
// @Param page query int false "Page (default 1)"
// @Success 200 {object} response.Envelope
// @Router /complaints/ranked [get]
func (h *RankingHandler) Ranked(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var municipalityID *string
	if raw := strings.TrimSpace(c.Query("municipality_id")); raw != "" {
		municipalityID = &raw
	}
	result, err := h.ranking.Rank(c.Request.Context(), municipalityID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

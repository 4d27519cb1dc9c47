package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/middleware"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
	"github.com/noah-isme/civic-triage-api/pkg/response"
)

type municipalityComplaintLister interface {
	ListByMunicipality(ctx context.Context, municipalityID string, query dto.ComplaintQuery) ([]models.Complaint, *models.Pagination, error)
}

type dashboardService interface {
	Municipality(ctx context.Context, municipalityID string) (*dto.MunicipalityDashboard, bool, error)
}

type registerExporter interface {
	ExportComplaints(ctx context.Context, municipalityID string, format dto.ExportFormat, actor *models.JWTClaims) (*dto.ExportFile, error)
}

// MunicipalityHandler exposes municipality scoped views.
type MunicipalityHandler struct {
	complaints municipalityComplaintLister
	dashboard  dashboardService
	exporter   registerExporter
}

// NewMunicipalityHandler constructs the handler.
func NewMunicipalityHandler(complaints municipalityComplaintLister, dashboard dashboardService, exporter registerExporter) *MunicipalityHandler {
	return &MunicipalityHandler{complaints: complaints, dashboard: dashboard, exporter: exporter}
}

// Complaints godoc
// @Summary List municipality complaints
// @Tags Municipalities
// @Produce json
// @Param id path string true "Municipality ID"
// @Param status query string false "Status"
// @Param department query string false "Department"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /municipalities/{id}/complaints [get]
func (h *MunicipalityHandler) Complaints(c *gin.Context) {
	var query dto.ComplaintQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	complaints, pagination, err := h.complaints.ListByMunicipality(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, pagination)
}

// Dashboard godoc
// @Summary Municipality dashboard
// @Tags Municipalities
// @Produce json
// @Param id path string true "Municipality ID"
// @Success 200 {object} response.Envelope
// @Router /municipalities/{id}/dashboard [get]
func (h *MunicipalityHandler) Dashboard(c *gin.Context) {
	if h.dashboard == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.dashboard.Municipality(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetProcessingTime(c, start)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the complaint register
// @Tags Municipalities
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Municipality ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /municipalities/{id}/complaints/export [get]
func (h *MunicipalityHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatCSV)))
	file, err := h.exporter.ExportComplaints(c.Request.Context(), c.Param("id"), format, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type municipalityListerMock struct {
	id string
}

func (m *municipalityListerMock) ListByMunicipality(ctx context.Context, municipalityID string, query dto.ComplaintQuery) ([]models.Complaint, *models.Pagination, error) {
	m.id = municipalityID
	return []models.Complaint{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

type dashboardMock struct {
	hit bool
	err error
}

func (m *dashboardMock) Municipality(ctx context.Context, municipalityID string) (*dto.MunicipalityDashboard, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return &dto.MunicipalityDashboard{MunicipalityID: municipalityID}, m.hit, nil
}

type exporterMock struct {
	format dto.ExportFormat
	file   *dto.ExportFile
	err    error
}

func (m *exporterMock) ExportComplaints(ctx context.Context, municipalityID string, format dto.ExportFormat, actor *models.JWTClaims) (*dto.ExportFile, error) {
	m.format = format
	return m.file, m.err
}

func TestMunicipalityHandlerDashboardReportsCacheHit(t *testing.T) {
	h := NewMunicipalityHandler(&municipalityListerMock{}, &dashboardMock{hit: true}, &exporterMock{})

	c, w := newGinContext(http.MethodGet, "/municipalities/m-1/dashboard", nil)
	c.Params = gin.Params{{Key: "id", Value: "m-1"}}
	h.Dashboard(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"municipality_id":"m-1"`)
}

func TestMunicipalityHandlerDashboardNotFound(t *testing.T) {
	h := NewMunicipalityHandler(&municipalityListerMock{}, &dashboardMock{err: appErrors.Clone(appErrors.ErrNotFound, "municipality not found")}, &exporterMock{})

	c, w := newGinContext(http.MethodGet, "/municipalities/nope/dashboard", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.Dashboard(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMunicipalityHandlerComplaints(t *testing.T) {
	lister := &municipalityListerMock{}
	h := NewMunicipalityHandler(lister, &dashboardMock{}, &exporterMock{})

	c, w := newGinContext(http.MethodGet, "/municipalities/m-1/complaints", nil)
	c.Params = gin.Params{{Key: "id", Value: "m-1"}}
	h.Complaints(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m-1", lister.id)
}

func TestMunicipalityHandlerExportStreamsFile(t *testing.T) {
	exporter := &exporterMock{file: &dto.ExportFile{
		Filename:    "complaints-m-1-20240608.csv",
		ContentType: "text/csv",
		Content:     []byte("ID,Created\n"),
	}}
	h := NewMunicipalityHandler(&municipalityListerMock{}, &dashboardMock{}, exporter)

	c, w := newGinContext(http.MethodGet, "/municipalities/m-1/complaints/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "m-1"}}
	withClaims(c, "o-1", models.RoleOfficial)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatCSV, exporter.format)
	assert.Equal(t, `attachment; filename="complaints-m-1-20240608.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "ID,Created\n", w.Body.String())
}

func TestMunicipalityHandlerExportRequiresClaims(t *testing.T) {
	h := NewMunicipalityHandler(&municipalityListerMock{}, &dashboardMock{}, &exporterMock{})

	c, w := newGinContext(http.MethodGet, "/municipalities/m-1/complaints/export?format=pdf", nil)
	h.Export(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type reviewMock struct {
	req dto.CreateReviewRequest
	err error
}

func (m *reviewMock) Create(ctx context.Context, req dto.CreateReviewRequest, actor *models.JWTClaims) (*models.ComplaintReview, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.ComplaintReview{ID: "r-1", ComplaintID: req.ComplaintID, Rating: req.Rating}, nil
}

func (m *reviewMock) Mine(ctx context.Context, actor *models.JWTClaims) ([]models.ComplaintReview, error) {
	return []models.ComplaintReview{}, m.err
}

func TestReviewHandlerCreate(t *testing.T) {
	svc := &reviewMock{}
	h := NewReviewHandler(svc)

	c, w := newGinContext(http.MethodPost, "/reviews", []byte(`{"complaint_id":"c-1","rating":5,"feedback":"fixed fast"}`))
	withClaims(c, "u-1", models.RoleCitizen)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 5, svc.req.Rating)
}

func TestReviewHandlerDuplicateConflict(t *testing.T) {
	h := NewReviewHandler(&reviewMock{err: appErrors.Clone(appErrors.ErrConflict, "complaint already reviewed")})

	c, w := newGinContext(http.MethodPost, "/reviews", []byte(`{"complaint_id":"c-1","rating":4}`))
	withClaims(c, "u-1", models.RoleCitizen)
	h.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewHandlerMine(t *testing.T) {
	h := NewReviewHandler(&reviewMock{})

	c, w := newGinContext(http.MethodGet, "/reviews/mine", nil)
	withClaims(c, "u-1", models.RoleCitizen)
	h.Mine(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

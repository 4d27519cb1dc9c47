package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

type stubMunicipalities struct {
	items map[string]*models.Municipality
	err   error
}

func (s *stubMunicipalities) FindByID(_ context.Context, id string) (*models.Municipality, error) {
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m, nil
}

func municipalities(ids ...string) *stubMunicipalities {
	items := make(map[string]*models.Municipality, len(ids))
	for _, id := range ids {
		items[id] = &models.Municipality{ID: id, Name: "Municipality " + id}
	}
	return &stubMunicipalities{items: items}
}

func strPtr(v string) *string { return &v }

func complaintFixture(id, municipalityID string, status models.ComplaintStatus, priority string, upvotes int, createdAt time.Time) models.Complaint {
	return models.Complaint{
		ID:             id,
		UserID:         "citizen-1",
		MunicipalityID: strPtr(municipalityID),
		Department:     models.DepartmentWater,
		Topic:          "Topic " + id,
		Description:    "Description " + id,
		Location:       "Main Street",
		Latitude:       decimal.RequireFromString("28.6139"),
		Longitude:      decimal.RequireFromString("77.2090"),
		Status:         status,
		Priority:       decimal.RequireFromString(priority),
		UpvoteCount:    upvotes,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func officialClaims(municipalityID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: "official-1", Role: models.RoleOfficial, MunicipalityID: strPtr(municipalityID)}
}

func citizenClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleCitizen}
}

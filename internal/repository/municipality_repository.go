package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

// MunicipalityRepository reads municipalities and their official assignments.
type MunicipalityRepository struct {
	db *sqlx.DB
}

// NewMunicipalityRepository constructs the repository.
func NewMunicipalityRepository(db *sqlx.DB) *MunicipalityRepository {
	return &MunicipalityRepository{db: db}
}

// FindByID fetches a municipality.
func (r *MunicipalityRepository) FindByID(ctx context.Context, id string) (*models.Municipality, error) {
	const query = `SELECT id, name, district, state, latitude, longitude, verified FROM municipalities WHERE id = $1`
	var municipality models.Municipality
	if err := r.db.GetContext(ctx, &municipality, query, id); err != nil {
		return nil, err
	}
	return &municipality, nil
}

// FindOfficialAssignment returns the municipality an official acts for.
func (r *MunicipalityRepository) FindOfficialAssignment(ctx context.Context, userID string) (*models.OfficialAssignment, error) {
	const query = `SELECT user_id, municipality_id, designation FROM municipality_officials WHERE user_id = $1`
	var assignment models.OfficialAssignment
	if err := r.db.GetContext(ctx, &assignment, query, userID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

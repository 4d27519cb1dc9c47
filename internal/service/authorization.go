package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type officialAssignmentFinder interface {
	FindOfficialAssignment(ctx context.Context, userID string) (*models.OfficialAssignment, error)
}

// MunicipalityAuthorizer decides whether an actor may act on a municipality's complaints.
// Staff and admins act everywhere; officials only within their assigned municipality.
type MunicipalityAuthorizer struct {
	assignments officialAssignmentFinder
}

// NewMunicipalityAuthorizer constructs the authorizer. assignments resolves officials
// whose token does not carry a municipality and may be nil.
func NewMunicipalityAuthorizer(assignments officialAssignmentFinder) *MunicipalityAuthorizer {
	return &MunicipalityAuthorizer{assignments: assignments}
}

// Authorize returns nil when actor may manage complaints of municipalityID.
func (a *MunicipalityAuthorizer) Authorize(ctx context.Context, actor *models.JWTClaims, municipalityID *string) error {
	if actor == nil || actor.UserID == "" {
		return appErrors.ErrUnauthorized
	}
	if actor.IsStaff() {
		return nil
	}
	if !actor.IsOfficial() {
		return appErrors.Clone(appErrors.ErrForbidden, "only municipality officials or staff can manage complaints")
	}

	assigned, err := a.assignedMunicipality(ctx, actor)
	if err != nil {
		return err
	}
	if assigned == "" || municipalityID == nil || *municipalityID != assigned {
		return appErrors.Clone(appErrors.ErrForbidden, "official is not assigned to this municipality")
	}
	return nil
}

func (a *MunicipalityAuthorizer) assignedMunicipality(ctx context.Context, actor *models.JWTClaims) (string, error) {
	if actor.MunicipalityID != nil {
		return *actor.MunicipalityID, nil
	}
	if a == nil || a.assignments == nil {
		return "", nil
	}
	assignment, err := a.assignments.FindOfficialAssignment(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve official assignment")
	}
	return assignment.MunicipalityID, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

// ProfileRepository stores submitter reputation counters.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// EnsureHonestyScore returns the user's honesty score, creating the profile
// with the initial score when it does not exist yet.
func (r *ProfileRepository) EnsureHonestyScore(ctx context.Context, userID string) (int, error) {
	const query = `WITH created AS (
	INSERT INTO profiles (user_id, honesty_score, created_at, updated_at)
	VALUES ($1, $2, NOW(), NOW())
	ON CONFLICT (user_id) DO NOTHING
	RETURNING honesty_score
)
SELECT honesty_score FROM created
UNION ALL
SELECT honesty_score FROM profiles WHERE user_id = $1
LIMIT 1`
	var score int
	if err := r.db.GetContext(ctx, &score, query, userID, models.InitialHonestyScore); err != nil {
		return 0, fmt.Errorf("ensure honesty score: %w", err)
	}
	return score, nil
}

// DecrementHonestyScore atomically subtracts penalty and returns the new score.
// sql.ErrNoRows is returned when the profile does not exist.
func (r *ProfileRepository) DecrementHonestyScore(ctx context.Context, userID string, penalty int) (int, error) {
	const query = `UPDATE profiles SET honesty_score = honesty_score - $1, updated_at = NOW()
	WHERE user_id = $2 RETURNING honesty_score`
	var score int
	if err := r.db.GetContext(ctx, &score, query, penalty, userID); err != nil {
		return 0, err
	}
	return score, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/classifier"
	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type stubComplaintStore struct {
	created []*models.Complaint
	err     error
}

func (s *stubComplaintStore) Create(_ context.Context, complaint *models.Complaint) error {
	if s.err != nil {
		return s.err
	}
	complaint.ID = "complaint-new"
	complaint.Priority = complaint.Priority.Round(2)
	s.created = append(s.created, complaint)
	return nil
}

type stubHonesty struct {
	scores     map[string]int
	decrements int
}

func (s *stubHonesty) EnsureHonestyScore(_ context.Context, userID string) (int, error) {
	if s.scores == nil {
		s.scores = map[string]int{}
	}
	if _, ok := s.scores[userID]; !ok {
		s.scores[userID] = models.InitialHonestyScore
	}
	return s.scores[userID], nil
}

func (s *stubHonesty) DecrementHonestyScore(_ context.Context, userID string, penalty int) (int, error) {
	s.decrements++
	s.scores[userID] -= penalty
	return s.scores[userID], nil
}

type stubUrgency struct {
	result classifier.UrgencyResult
	calls  int
}

func (s *stubUrgency) Urgency(context.Context, string) classifier.UrgencyResult {
	s.calls++
	return s.result
}

type moderationFixture struct {
	svc        *ModerationService
	complaints *stubComplaintStore
	profiles   *stubHonesty
	urgency    *stubUrgency
	cache      *stubCacheRepo
}

func newModerationFixture(score int, urgency classifier.UrgencyResult) moderationFixture {
	f := moderationFixture{
		complaints: &stubComplaintStore{},
		profiles:   &stubHonesty{scores: map[string]int{"citizen-1": score}},
		urgency:    &stubUrgency{result: urgency},
		cache:      &stubCacheRepo{},
	}
	f.svc = NewModerationService(ModerationServiceParams{
		Complaints:     f.complaints,
		Profiles:       f.profiles,
		Municipalities: municipalities("muni-1"),
		Classifier:     f.urgency,
		Cache:          NewCacheService(f.cache, nil, time.Minute, zap.NewNop(), true),
		Metrics:        NewMetricsService(),
	})
	return f
}

func validSubmitRequest() dto.SubmitComplaintRequest {
	lat, lng := 28.6139, 77.2090
	return dto.SubmitComplaintRequest{
		MunicipalityID: strPtr("muni-1"),
		Department:     models.DepartmentWater,
		Topic:          "Burst water main",
		Description:    "Water main burst near the market, street is flooding",
		Location:       "Market Road",
		Latitude:       &lat,
		Longitude:      &lng,
	}
}

func TestModerationServiceRejectsLowTrust(t *testing.T) {
	f := newModerationFixture(25, classifier.UrgencyResult{Priority: 0.9})

	_, err := f.svc.Submit(context.Background(), validSubmitRequest(), citizenClaims("citizen-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTrustTooLow))

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 25, appErr.Details["honesty_score"])
	assert.Zero(t, f.urgency.calls)
	assert.Empty(t, f.complaints.created)
	assert.Zero(t, f.profiles.decrements)
	assert.Equal(t, 25, f.profiles.scores["citizen-1"])
}

func TestModerationServiceRejectsLowUrgencyWithPenalty(t *testing.T) {
	f := newModerationFixture(70, classifier.UrgencyResult{Priority: 0.15})

	_, err := f.svc.Submit(context.Background(), validSubmitRequest(), citizenClaims("citizen-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRejectedLowUrgency))

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 0.15, appErr.Details["priority"])
	assert.Equal(t, 60, appErr.Details["honesty_score"])
	assert.Equal(t, 60, f.profiles.scores["citizen-1"])
	assert.Equal(t, 1, f.profiles.decrements)
	assert.Empty(t, f.complaints.created)
	assert.Empty(t, f.cache.invalidated)
}

func TestModerationServiceFallbackPriority(t *testing.T) {
	f := newModerationFixture(100, classifier.UrgencyResult{Priority: classifier.DefaultPriority, Fallback: true})

	complaint, err := f.svc.Submit(context.Background(), validSubmitRequest(), citizenClaims("citizen-1"))
	require.NoError(t, err)
	assert.Equal(t, "0.5", complaint.Priority.String())
	assert.Equal(t, models.ComplaintStatusPending, complaint.Status)
	assert.Equal(t, "citizen-1", complaint.UserID)
	assert.Equal(t, "28.6139", complaint.Latitude.String())
	require.Len(t, f.complaints.created, 1)
	assert.Equal(t, []string{"dashboard:muni-1*"}, f.cache.invalidated)
	assert.Zero(t, f.profiles.decrements)
}

func TestModerationServiceAcceptsThresholdPriority(t *testing.T) {
	f := newModerationFixture(30, classifier.UrgencyResult{Priority: LowUrgencyThreshold})

	complaint, err := f.svc.Submit(context.Background(), validSubmitRequest(), citizenClaims("citizen-1"))
	require.NoError(t, err)
	assert.Equal(t, "0.2", complaint.Priority.String())
}

func TestModerationServiceCreatesProfileOnFirstSubmission(t *testing.T) {
	f := newModerationFixture(0, classifier.UrgencyResult{Priority: 0.7})
	delete(f.profiles.scores, "citizen-1")

	_, err := f.svc.Submit(context.Background(), validSubmitRequest(), citizenClaims("citizen-1"))
	require.NoError(t, err)
	assert.Equal(t, models.InitialHonestyScore, f.profiles.scores["citizen-1"])
}

func TestModerationServiceValidation(t *testing.T) {
	cases := map[string]func(*dto.SubmitComplaintRequest){
		"unknown department": func(r *dto.SubmitComplaintRequest) { r.Department = "Parks" },
		"missing latitude":   func(r *dto.SubmitComplaintRequest) { r.Latitude = nil },
		"longitude range": func(r *dto.SubmitComplaintRequest) {
			lng := 181.0
			r.Longitude = &lng
		},
		"blank topic":     func(r *dto.SubmitComplaintRequest) { r.Topic = "   " },
		"invalid media":   func(r *dto.SubmitComplaintRequest) { r.MediaURL = strPtr("not a url") },
		"empty municipal": func(r *dto.SubmitComplaintRequest) { r.MunicipalityID = strPtr("") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newModerationFixture(100, classifier.UrgencyResult{Priority: 0.9})
			req := validSubmitRequest()
			mutate(&req)

			_, err := f.svc.Submit(context.Background(), req, citizenClaims("citizen-1"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
			assert.Zero(t, f.urgency.calls)
		})
	}
}

func TestModerationServiceUnknownMunicipality(t *testing.T) {
	f := newModerationFixture(100, classifier.UrgencyResult{Priority: 0.9})
	req := validSubmitRequest()
	req.MunicipalityID = strPtr("muni-404")

	_, err := f.svc.Submit(context.Background(), req, citizenClaims("citizen-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestModerationServiceRequiresIdentity(t *testing.T) {
	f := newModerationFixture(100, classifier.UrgencyResult{Priority: 0.9})

	_, err := f.svc.Submit(context.Background(), validSubmitRequest(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestModerationServiceStorageFailure(t *testing.T) {
	f := newModerationFixture(100, classifier.UrgencyResult{Priority: 0.9})
	f.complaints.err = errors.New("insert failed")

	_, err := f.svc.Submit(context.Background(), validSubmitRequest(), citizenClaims("citizen-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, f.cache.invalidated)
}

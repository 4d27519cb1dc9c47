package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type stubComplaintRepo struct {
	complaints map[string]models.Complaint
	upvoters   map[string]map[string]struct{}
	comments   []models.ComplaintComment
	lastFilter models.ComplaintFilter
}

func newStubComplaintRepo(complaints ...models.Complaint) *stubComplaintRepo {
	repo := &stubComplaintRepo{complaints: map[string]models.Complaint{}, upvoters: map[string]map[string]struct{}{}}
	for _, c := range complaints {
		repo.complaints[c.ID] = c
	}
	return repo
}

func (s *stubComplaintRepo) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	c, ok := s.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (s *stubComplaintRepo) List(_ context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	s.lastFilter = filter
	var out []models.Complaint
	for _, c := range s.complaints {
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (s *stubComplaintRepo) ToggleUpvote(_ context.Context, complaintID, userID string) (bool, int, error) {
	voters, ok := s.upvoters[complaintID]
	if !ok {
		voters = map[string]struct{}{}
		s.upvoters[complaintID] = voters
	}
	if _, exists := voters[userID]; exists {
		delete(voters, userID)
		return false, len(voters), nil
	}
	voters[userID] = struct{}{}
	return true, len(voters), nil
}

func (s *stubComplaintRepo) CreateComment(_ context.Context, comment *models.ComplaintComment) error {
	comment.ID = "comment-1"
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *stubComplaintRepo) ListComments(context.Context, string) ([]models.ComplaintComment, error) {
	return s.comments, nil
}

func TestComplaintServiceToggleUpvote(t *testing.T) {
	repo := newStubComplaintRepo(complaintFixture("c-1", "muni-1", models.ComplaintStatusPending, "0.50", 0, time.Now()))
	svc := NewComplaintService(repo, municipalities("muni-1"), nil, nil, nil)
	ctx := context.Background()

	first, err := svc.ToggleUpvote(ctx, "c-1", citizenClaims("u-1"))
	require.NoError(t, err)
	assert.Equal(t, dto.UpvoteResult{Message: "Upvoted", Upvoted: true, TotalUpvotes: 1}, *first)

	_, err = svc.ToggleUpvote(ctx, "c-1", citizenClaims("u-2"))
	require.NoError(t, err)

	removed, err := svc.ToggleUpvote(ctx, "c-1", citizenClaims("u-1"))
	require.NoError(t, err)
	assert.Equal(t, dto.UpvoteResult{Message: "Upvote removed", Upvoted: false, TotalUpvotes: 1}, *removed)

	_, err = svc.ToggleUpvote(ctx, "missing", citizenClaims("u-1"))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestComplaintServiceGetIncludesComments(t *testing.T) {
	repo := newStubComplaintRepo(complaintFixture("c-1", "muni-1", models.ComplaintStatusPending, "0.50", 2, time.Now()))
	svc := NewComplaintService(repo, municipalities("muni-1"), nil, nil, nil)

	_, err := svc.AddComment(context.Background(), "c-1", dto.CreateCommentRequest{Content: "  Same problem on my street  "}, citizenClaims("u-9"))
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, 2, detail.UpvoteCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "Same problem on my street", detail.Comments[0].Content)
	assert.Equal(t, "u-9", detail.Comments[0].UserID)
}

func TestComplaintServiceAddCommentValidation(t *testing.T) {
	repo := newStubComplaintRepo(complaintFixture("c-1", "muni-1", models.ComplaintStatusPending, "0.50", 0, time.Now()))
	svc := NewComplaintService(repo, municipalities("muni-1"), nil, nil, nil)

	_, err := svc.AddComment(context.Background(), "c-1", dto.CreateCommentRequest{Content: "   "}, citizenClaims("u-1"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.AddComment(context.Background(), "c-404", dto.CreateCommentRequest{Content: "hello"}, citizenClaims("u-1"))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.comments)
}

func TestComplaintServiceList(t *testing.T) {
	mine := complaintFixture("c-1", "muni-1", models.ComplaintStatusPending, "0.50", 0, time.Now())
	mine.UserID = "u-1"
	other := complaintFixture("c-2", "muni-1", models.ComplaintStatusPending, "0.50", 0, time.Now())
	repo := newStubComplaintRepo(mine, other)
	svc := NewComplaintService(repo, municipalities("muni-1"), nil, nil, nil)

	items, pagination, err := svc.List(context.Background(), dto.ComplaintQuery{Mine: true, PageSize: 500}, citizenClaims("u-1"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c-1", items[0].ID)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, pagination)

	_, _, err = svc.List(context.Background(), dto.ComplaintQuery{Mine: true}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, _, err = svc.List(context.Background(), dto.ComplaintQuery{Status: "Closed"}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

type stubReviewedLookup struct {
	reviewed map[string]bool
	err      error
	asked    []string
}

func (s *stubReviewedLookup) ReviewedComplaintIDs(_ context.Context, ids []string) (map[string]bool, error) {
	s.asked = append(s.asked, ids...)
	return s.reviewed, s.err
}

func TestComplaintServiceListMineMarksReviewed(t *testing.T) {
	first := complaintFixture("c-1", "muni-1", models.ComplaintStatusResolved, "0.50", 0, time.Now())
	first.UserID = "u-1"
	second := complaintFixture("c-2", "muni-1", models.ComplaintStatusPending, "0.50", 0, time.Now())
	second.UserID = "u-1"
	repo := newStubComplaintRepo(first, second)
	lookup := &stubReviewedLookup{reviewed: map[string]bool{"c-1": true}}
	svc := NewComplaintService(repo, municipalities("muni-1"), lookup, nil, nil)

	items, _, err := svc.List(context.Background(), dto.ComplaintQuery{Mine: true}, citizenClaims("u-1"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	flags := map[string]bool{}
	for _, item := range items {
		require.NotNil(t, item.Reviewed)
		flags[item.ID] = *item.Reviewed
	}
	assert.Equal(t, map[string]bool{"c-1": true, "c-2": false}, flags)

	lookup.asked = nil
	items, _, err = svc.List(context.Background(), dto.ComplaintQuery{}, nil)
	require.NoError(t, err)
	assert.Empty(t, lookup.asked)
	for _, item := range items {
		assert.Nil(t, item.Reviewed)
	}

	lookup.err = errors.New("db down")
	_, _, err = svc.List(context.Background(), dto.ComplaintQuery{Mine: true}, citizenClaims("u-1"))
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestComplaintServiceListByMunicipality(t *testing.T) {
	repo := newStubComplaintRepo()
	svc := NewComplaintService(repo, municipalities("muni-1"), nil, nil, nil)

	items, _, err := svc.ListByMunicipality(context.Background(), "muni-1", dto.ComplaintQuery{Mine: true, Page: 2})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, "muni-1", repo.lastFilter.MunicipalityID)
	assert.Empty(t, repo.lastFilter.UserID)
	assert.Equal(t, 2, repo.lastFilter.Page)

	_, _, err = svc.ListByMunicipality(context.Background(), "muni-404", dto.ComplaintQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type stubCacheRepo struct {
	store       map[string][]byte
	invalidated []string
	getErr      error
	gets        int
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.gets++
	if s.getErr != nil {
		return s.getErr
	}
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out map[string]int
	hit, err := svc.Get(ctx, "dashboard:muni-1", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "dashboard:muni-1", map[string]int{"total": 3}, 0))
	hit, err = svc.Get(ctx, "dashboard:muni-1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, out["total"])

	require.NoError(t, svc.Invalidate(ctx, "dashboard:muni-1*"))
	assert.Equal(t, []string{"dashboard:muni-1*"}, repo.invalidated)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.Invalidate(context.Background(), "k*"))
	assert.Zero(t, repo.gets)
	assert.Empty(t, repo.invalidated)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.NoError(t, nilSvc.Set(context.Background(), "k", 1, 0))
}

func TestCacheServiceReportsBackendErrors(t *testing.T) {
	repo := &stubCacheRepo{getErr: errors.New("connection refused")}
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.False(t, hit)
	assert.EqualError(t, err, "connection refused")
}

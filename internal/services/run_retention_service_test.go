package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	var got time.Time
	repo := &fakeRunRepo{deleteFn: func(cutoff time.Time) (int64, error) {
		got = cutoff
		return 4, nil
	}}
	svc := &runRetentionService{repo: repo, retentionDays: 30, now: func() time.Time { return now }}

	require.NoError(t, svc.CleanupDaily(context.Background()))
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), got)
}

func TestRunRetentionRetriesTransientOnce(t *testing.T) {
	defer func(d time.Duration) { cleanupRetryDelay = d }(cleanupRetryDelay)
	cleanupRetryDelay = 0

	attempts := 0
	repo := &fakeRunRepo{deleteFn: func(time.Time) (int64, error) {
		attempts++
		if attempts == 1 {
			return 0, io.EOF
		}
		return 1, nil
	}}
	require.NoError(t, NewRunRetentionService(repo, 7).CleanupDaily(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestRunRetentionDoesNotRetryPermanentErrors(t *testing.T) {
	boom := errors.New("permission denied for table generation_runs")
	repo := &fakeRunRepo{deleteFn: func(time.Time) (int64, error) { return 0, boom }}

	err := NewRunRetentionService(repo, 7).CleanupDaily(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, repo.calls)
}

package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/repositories"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

// One retry on transient network errors with a small back-off.
var cleanupRetryDelay = 3 * time.Second

// RunRetentionService prunes old generation run audit rows each night.
type RunRetentionService interface {
	CleanupDaily(ctx context.Context) error
}

type runRetentionService struct {
	repo          repositories.GenerationRunRepository
	retentionDays int
	now           func() time.Time
}

func NewRunRetentionService(repo repositories.GenerationRunRepository, retentionDays int) RunRetentionService {
	return &runRetentionService{repo: repo, retentionDays: retentionDays, now: time.Now}
}

// runWithRetry retries op once when it fails with EOF, a pgconn
// safe-to-retry error, or a closed connection.
func (s *runRetentionService) runWithRetry(ctx context.Context, op func(context.Context) error) error {
	if err := op(ctx); err != nil {
		if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
			strings.Contains(err.Error(), "connection was closed") {
			utils.Logger.WithError(err).Warn("run retention hit transient DB error; retrying once")
			time.Sleep(cleanupRetryDelay)
			return op(ctx)
		}
		return err
	}
	return nil
}

func (s *runRetentionService) CleanupDaily(ctx context.Context) error {
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)
	var deleted int64
	err := s.runWithRetry(ctx, func(ctx context.Context) error {
		n, err := s.repo.DeleteFinishedBefore(ctx, cutoff)
		deleted = n
		return err
	})
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to prune generation_runs")
		return err
	}
	utils.Logger.Infof("Daily generation run cleanup removed %d rows older than %s", deleted, cutoff.Format(time.RFC3339))
	return nil
}

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/models"
)

type GenerationRunRepository interface {
	Create(ctx context.Context, run *models.GenerationRun) error
	Finish(ctx context.Context, run *models.GenerationRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error)
	MarkResumed(ctx context.Context, id uuid.UUID) error
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type generationRunRepo struct {
	db DB
}

func NewGenerationRunRepository(db DB) GenerationRunRepository {
	return &generationRunRepo{db: db}
}

func (r *generationRunRepo) Create(ctx context.Context, run *models.GenerationRun) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO generation_runs (
			id, admin_id, building_id, floor_count, status,
			floors_created, units_created, rolled_back, started_at, resumed_from
		) VALUES ($1,$2,$3,$4,$5,0,0,FALSE,$6,$7)
	`, run.ID, run.AdminID, run.BuildingID, run.FloorCount, run.Status, run.StartedAt, run.ResumedFrom)
	return err
}

func (r *generationRunRepo) Finish(ctx context.Context, run *models.GenerationRun) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE generation_runs
		SET status=$1, reason=$2, floors_created=$3, units_created=$4,
		    rolled_back=$5, finished_at=$6, report=$8
		WHERE id=$7
	`, run.Status, run.Reason, run.FloorsCreated, run.UnitsCreated, run.RolledBack, run.FinishedAt, run.ID,
		reportJSONB(run.Report))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *generationRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, admin_id, building_id, floor_count, status, reason,
		       floors_created, units_created, rolled_back, started_at, finished_at,
		       resumed_from, report
		FROM generation_runs
		WHERE id=$1
	`, id)
	return r.scanRun(row)
}

// MarkResumed claims a failed run for continuation. It returns pgx.ErrNoRows
// unless the run exists, failed, and was neither rolled back nor already
// resumed, so a run is continued at most once.
func (r *generationRunRepo) MarkResumed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE generation_runs
		SET status=$1
		WHERE id=$2 AND status=$3 AND rolled_back=FALSE
	`, models.GenerationRunResumed, id, models.GenerationRunFailed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteFinishedBefore removes finished runs older than cutoff. Runs still
// marked RUNNING are kept.
func (r *generationRunRepo) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM generation_runs
		WHERE finished_at IS NOT NULL AND finished_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *generationRunRepo) scanRun(row pgx.Row) (*models.GenerationRun, error) {
	var run models.GenerationRun
	var reason pgtype.Text
	var finishedAt pgtype.Timestamptz
	var resumedFrom pgtype.UUID
	var report pgtype.JSONB
	if err := row.Scan(
		&run.ID, &run.AdminID, &run.BuildingID, &run.FloorCount, &run.Status, &reason,
		&run.FloorsCreated, &run.UnitsCreated, &run.RolledBack, &run.StartedAt, &finishedAt,
		&resumedFrom, &report,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if reason.Status == pgtype.Present {
		run.Reason = &reason.String
	}
	if finishedAt.Status == pgtype.Present {
		run.FinishedAt = &finishedAt.Time
	}
	if resumedFrom.Status == pgtype.Present {
		id := uuid.UUID(resumedFrom.Bytes)
		run.ResumedFrom = &id
	}
	if report.Status == pgtype.Present {
		run.Report = report.Bytes
	}
	return &run, nil
}

func reportJSONB(raw []byte) pgtype.JSONB {
	if len(raw) == 0 {
		return pgtype.JSONB{Status: pgtype.Null}
	}
	return pgtype.JSONB{Bytes: raw, Status: pgtype.Present}
}

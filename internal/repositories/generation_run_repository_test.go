package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/models"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs   []execCall
	execTag pgconn.CommandTag
	execErr error
	row     pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return f.row }

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func TestCreateAndFinish(t *testing.T) {
	db := &fakeDB{execTag: pgconn.CommandTag("UPDATE 1")}
	repo := NewGenerationRunRepository(db)

	run := &models.GenerationRun{
		ID:         uuid.New(),
		AdminID:    uuid.New(),
		BuildingID: "B1",
		FloorCount: 2,
		Status:     models.GenerationRunRunning,
		StartedAt:  time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), run))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "INSERT INTO generation_runs")
	assert.Equal(t, run.ID, db.execs[0].args[0])

	assert.Nil(t, db.execs[0].args[6], "a fresh run has no predecessor")

	run.Status = models.GenerationRunFailed
	run.Reason = utils.Ptr("boom")
	run.FinishedAt = utils.Ptr(time.Now())
	run.Report = []byte(`{"building_id":"B1"}`)
	require.NoError(t, repo.Finish(context.Background(), run))
	require.Len(t, db.execs, 2)
	assert.Equal(t, models.GenerationRunFailed, db.execs[1].args[0])
	assert.Equal(t, run.ID, db.execs[1].args[6])
	assert.Equal(t, pgtype.JSONB{Bytes: run.Report, Status: pgtype.Present}, db.execs[1].args[7])
}

func TestCreateResumedRun(t *testing.T) {
	db := &fakeDB{execTag: pgconn.CommandTag("INSERT 0 1")}
	prior := uuid.New()
	run := &models.GenerationRun{ID: uuid.New(), ResumedFrom: &prior, StartedAt: time.Now()}
	require.NoError(t, NewGenerationRunRepository(db).Create(context.Background(), run))
	assert.Equal(t, &prior, db.execs[0].args[6])
}

func TestFinishWithoutReportWritesNull(t *testing.T) {
	db := &fakeDB{execTag: pgconn.CommandTag("UPDATE 1")}
	require.NoError(t, NewGenerationRunRepository(db).Finish(context.Background(), &models.GenerationRun{ID: uuid.New()}))
	assert.Equal(t, pgtype.JSONB{Status: pgtype.Null}, db.execs[0].args[7])
}

func TestMarkResumed(t *testing.T) {
	db := &fakeDB{execTag: pgconn.CommandTag("UPDATE 1")}
	id := uuid.New()
	require.NoError(t, NewGenerationRunRepository(db).MarkResumed(context.Background(), id))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "status=$3 AND rolled_back=FALSE")
	assert.Equal(t, []any{models.GenerationRunResumed, id, models.GenerationRunFailed}, db.execs[0].args)

	db.execTag = pgconn.CommandTag("UPDATE 0")
	err := NewGenerationRunRepository(db).MarkResumed(context.Background(), id)
	assert.ErrorIs(t, err, pgx.ErrNoRows, "a run already claimed cannot be resumed again")
}

func TestFinishUnknownRun(t *testing.T) {
	db := &fakeDB{execTag: pgconn.CommandTag("UPDATE 0")}
	err := NewGenerationRunRepository(db).Finish(context.Background(), &models.GenerationRun{ID: uuid.New()})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestDeleteFinishedBefore(t *testing.T) {
	db := &fakeDB{execTag: pgconn.CommandTag("DELETE 3")}
	n, err := NewGenerationRunRepository(db).DeleteFinishedBefore(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	db.execErr = errors.New("conn reset")
	_, err = NewGenerationRunRepository(db).DeleteFinishedBefore(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestGetByID(t *testing.T) {
	id := uuid.New()
	prior := uuid.New()
	finished := time.Now().UTC()
	db := &fakeDB{row: rowFunc(func(dest ...any) error {
		*(dest[0].(*uuid.UUID)) = id
		*(dest[2].(*string)) = "B1"
		*(dest[3].(*int)) = 2
		*(dest[4].(*models.GenerationRunStatus)) = models.GenerationRunSucceeded
		*(dest[5].(*pgtype.Text)) = pgtype.Text{Status: pgtype.Null}
		*(dest[6].(*int)) = 2
		*(dest[7].(*int)) = 6
		*(dest[10].(*pgtype.Timestamptz)) = pgtype.Timestamptz{Time: finished, Status: pgtype.Present}
		*(dest[11].(*pgtype.UUID)) = pgtype.UUID{Bytes: prior, Status: pgtype.Present}
		*(dest[12].(*pgtype.JSONB)) = pgtype.JSONB{Bytes: []byte(`{"building_id":"B1"}`), Status: pgtype.Present}
		return nil
	})}

	run, err := NewGenerationRunRepository(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "B1", run.BuildingID)
	assert.Nil(t, run.Reason)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, finished, *run.FinishedAt)
	assert.Equal(t, 6, run.UnitsCreated)
	require.NotNil(t, run.ResumedFrom)
	assert.Equal(t, prior, *run.ResumedFrom)
	assert.JSONEq(t, `{"building_id":"B1"}`, string(run.Report))
}

func TestGetByIDNotFound(t *testing.T) {
	db := &fakeDB{row: rowFunc(func(...any) error { return pgx.ErrNoRows })}
	run, err := NewGenerationRunRepository(db).GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, run)
}

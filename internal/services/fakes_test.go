package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/models"
)

type fakeStructureClient struct {
	mu       sync.Mutex
	floors   []catalog.CreateFloorRequest
	units    []catalog.CreateUnitRequest
	deleted  []string
	failPlot string
	failErr  error
	next     int
}

func (f *fakeStructureClient) id(prefix string) string {
	f.next++
	return fmt.Sprintf("%s%d", prefix, f.next)
}

func (f *fakeStructureClient) CreateFloor(_ context.Context, req catalog.CreateFloorRequest) (*catalog.Floor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.floors = append(f.floors, req)
	return &catalog.Floor{ID: f.id("f"), FloorNumber: req.FloorNumber}, nil
}

func (f *fakeStructureClient) CreateUnit(_ context.Context, req catalog.CreateUnitRequest) (*catalog.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.PlotNo == f.failPlot {
		f.failPlot = ""
		return nil, f.failErr
	}
	f.units = append(f.units, req)
	return &catalog.Unit{ID: f.id("u"), PlotNo: req.PlotNo}, nil
}

func (f *fakeStructureClient) DeleteFloor(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStructureClient) DeleteUnit(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRunRepo struct {
	created  []*models.GenerationRun
	finished []models.GenerationRun
	rows     map[uuid.UUID]models.GenerationRun
	getErr   error
	deleteFn func(cutoff time.Time) (int64, error)
	calls    int
}

func (r *fakeRunRepo) store(run models.GenerationRun) {
	if r.rows == nil {
		r.rows = map[uuid.UUID]models.GenerationRun{}
	}
	r.rows[run.ID] = run
}

func (r *fakeRunRepo) Create(_ context.Context, run *models.GenerationRun) error {
	r.created = append(r.created, run)
	r.store(*run)
	return nil
}

func (r *fakeRunRepo) Finish(_ context.Context, run *models.GenerationRun) error {
	r.finished = append(r.finished, *run)
	r.store(*run)
	return nil
}

func (r *fakeRunRepo) GetByID(_ context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	run, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (r *fakeRunRepo) MarkResumed(_ context.Context, id uuid.UUID) error {
	run, ok := r.rows[id]
	if !ok || run.Status != models.GenerationRunFailed || run.RolledBack {
		return pgx.ErrNoRows
	}
	run.Status = models.GenerationRunResumed
	r.rows[id] = run
	return nil
}

func (r *fakeRunRepo) DeleteFinishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.calls++
	return r.deleteFn(cutoff)
}

type fakeInvalidator struct {
	ids []string
}

func (f *fakeInvalidator) InvalidateBuilding(id string) { f.ids = append(f.ids, id) }

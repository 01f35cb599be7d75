package generator

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
)

// fakeCatalog records every call in order and fails the calls selected by
// failOn, keyed by "floor:<n>" or the unit plot number.
type fakeCatalog struct {
	mu       sync.Mutex
	calls    []string
	floors   []catalog.CreateFloorRequest
	units    []catalog.CreateUnitRequest
	deleted  []string
	failOn   map[string]error
	inFlight int
	maxPar   int
	nextID   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{failOn: map[string]error{}}
}

func (f *fakeCatalog) enter() func() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxPar {
		f.maxPar = f.inFlight
	}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}

func (f *fakeCatalog) CreateFloor(_ context.Context, req catalog.CreateFloorRequest) (*catalog.Floor, error) {
	defer f.enter()()
	key := fmt.Sprintf("floor:%d", req.FloorNumber)
	f.calls = append(f.calls, key)
	if err, ok := f.failOn[key]; ok {
		delete(f.failOn, key)
		return nil, err
	}
	f.floors = append(f.floors, req)
	f.nextID++
	return &catalog.Floor{
		ID:                fmt.Sprintf("f%d", f.nextID),
		BuildingID:        req.BuildingID,
		FloorNumber:       req.FloorNumber,
		UnitType:          req.UnitType,
		TotalSubUnits:     req.TotalSubUnits,
		AvailableSubUnits: req.AvailableSubUnits,
	}, nil
}

func (f *fakeCatalog) CreateUnit(_ context.Context, req catalog.CreateUnitRequest) (*catalog.Unit, error) {
	defer f.enter()()
	f.calls = append(f.calls, "unit:"+req.PlotNo)
	if err, ok := f.failOn[req.PlotNo]; ok {
		delete(f.failOn, req.PlotNo)
		return nil, err
	}
	f.units = append(f.units, req)
	f.nextID++
	return &catalog.Unit{ID: fmt.Sprintf("u%d", f.nextID), FloorID: req.FloorID, PlotNo: req.PlotNo}, nil
}

func (f *fakeCatalog) DeleteFloor(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete-floor:"+id)
	if err, ok := f.failOn["delete:"+id]; ok {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalog) DeleteUnit(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete-unit:"+id)
	if err, ok := f.failOn["delete:"+id]; ok {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalog) createdPlots() []string {
	out := make([]string, 0, len(f.units))
	for _, u := range f.units {
		out = append(out, u.PlotNo)
	}
	return out
}

var errUnavailable = &catalog.APIError{StatusCode: http.StatusServiceUnavailable, Code: "unavailable", Message: "catalog down"}

type recordingReporter struct {
	outcomes []Outcome
}

func (r *recordingReporter) Report(_ context.Context, o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

type recordingInvalidator struct {
	buildings []string
}

func (r *recordingInvalidator) InvalidateBuilding(id string) {
	r.buildings = append(r.buildings, id)
}

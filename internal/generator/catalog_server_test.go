package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
)

// committingCatalog is a catalog over HTTP that persists each floor before
// invoking afterCommit and only then replies.
type committingCatalog struct {
	mu           sync.Mutex
	floors       map[string]int
	floorCreates []int
	units        int
	nextID       int
	afterCommit  func()
}

func newCommittingCatalog(t *testing.T) (*committingCatalog, *catalog.Client) {
	t.Helper()
	cc := &committingCatalog{floors: map[string]int{}}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/catalog/floors", func(w http.ResponseWriter, req *http.Request) {
		var body catalog.CreateFloorRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cc.mu.Lock()
		cc.nextID++
		id := fmt.Sprintf("srv-f%d", cc.nextID)
		cc.floors[id] = body.FloorNumber
		cc.floorCreates = append(cc.floorCreates, body.FloorNumber)
		hook := cc.afterCommit
		cc.afterCommit = nil
		cc.mu.Unlock()

		if hook != nil {
			hook()
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(catalog.Floor{ID: id, FloorNumber: body.FloorNumber})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/catalog/units", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cc.mu.Lock()
		cc.nextID++
		cc.units++
		id := fmt.Sprintf("srv-u%d", cc.nextID)
		cc.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(catalog.Unit{ID: id})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/catalog/floors/{id}", func(w http.ResponseWriter, req *http.Request) {
		cc.mu.Lock()
		delete(cc.floors, mux.Vars(req)["id"])
		cc.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/catalog/units/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return cc, catalog.NewClient(srv.URL, "token", 5*time.Second)
}

func (cc *committingCatalog) persistedFloors() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return len(cc.floors)
}

func TestCancelDuringFloorCallKeepsCommittedFloor(t *testing.T) {
	cc, client := newCommittingCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cc.afterCommit = cancel

	orch := NewOrchestrator(client, Options{Logger: testLogger()})
	report, err := orch.Run(ctx, towerSpec(), towerRegistry(t))

	require.ErrorIs(t, err, ErrBatchCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	var remote *RemoteCallError
	assert.False(t, errors.As(err, &remote), "the in-flight call is not aborted")

	assert.Equal(t, cc.persistedFloors(), report.FloorsCreated())
	require.Len(t, report.Floors, 1)
	assert.Equal(t, report.Floors[0].ID, report.Cursor.FloorID)
	assert.Zero(t, cc.units)
}

func TestCancelDuringFloorCallRollsBackCommittedFloor(t *testing.T) {
	cc, client := newCommittingCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cc.afterCommit = cancel

	orch := NewOrchestrator(client, Options{RollbackOnFailure: true, Logger: testLogger()})
	report, err := orch.Run(ctx, towerSpec(), towerRegistry(t))

	require.ErrorIs(t, err, ErrBatchCanceled)
	assert.True(t, report.RolledBack)
	assert.Empty(t, report.CompensationErrors)
	assert.Zero(t, cc.persistedFloors())
}

func TestResumeAfterCancelCreatesEachFloorOnce(t *testing.T) {
	cc, client := newCommittingCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cc.afterCommit = cancel

	orch := NewOrchestrator(client, Options{Logger: testLogger()})
	spec, reg := towerSpec(), towerRegistry(t)

	failed, err := orch.Run(ctx, spec, reg)
	require.Error(t, err)

	resumed, err := orch.Resume(context.Background(), spec, reg, failed)
	require.NoError(t, err)
	assert.True(t, resumed.Completed)
	assert.Equal(t, []int{1, 2}, cc.floorCreates)
	assert.Equal(t, 2, cc.persistedFloors())
	assert.Equal(t, 6, cc.units)
}

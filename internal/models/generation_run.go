package models

import (
	"time"

	"github.com/google/uuid"
)

type GenerationRunStatus string

const (
	GenerationRunRunning   GenerationRunStatus = "RUNNING"
	GenerationRunSucceeded GenerationRunStatus = "SUCCEEDED"
	GenerationRunFailed    GenerationRunStatus = "FAILED"
	// GenerationRunResumed marks a failed run that a later run continued.
	GenerationRunResumed GenerationRunStatus = "RESUMED"
)

// GenerationRun is the audit summary of one bulk-structure batch.
type GenerationRun struct {
	ID            uuid.UUID           `json:"id"`
	AdminID       uuid.UUID           `json:"admin_id"`
	BuildingID    string              `json:"building_id"`
	FloorCount    int                 `json:"floor_count"`
	Status        GenerationRunStatus `json:"status"`
	Reason        *string             `json:"reason,omitempty"`
	FloorsCreated int                 `json:"floors_created"`
	UnitsCreated  int                 `json:"units_created"`
	RolledBack    bool                `json:"rolled_back"`
	ResumedFrom   *uuid.UUID          `json:"resumed_from,omitempty"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`

	// Report is the JSON batch report, written when the run finishes.
	Report []byte `json:"-"`
}

func (r *GenerationRun) GetID() string { return r.ID.String() }

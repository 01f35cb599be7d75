package generator

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/models"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

// StructureClient is the subset of the catalog service a batch drives.
type StructureClient interface {
	CreateFloor(ctx context.Context, req catalog.CreateFloorRequest) (*catalog.Floor, error)
	CreateUnit(ctx context.Context, req catalog.CreateUnitRequest) (*catalog.Unit, error)
	DeleteFloor(ctx context.Context, floorID string) error
	DeleteUnit(ctx context.Context, unitID string) error
}

// ViewInvalidator drops any cached structure views of a building.
type ViewInvalidator interface {
	InvalidateBuilding(buildingID string)
}

type Options struct {
	// Preflight resolves every floor mix and unit config before the first
	// remote call and aborts with no side effects on the first gap.
	Preflight bool
	// RollbackOnFailure deletes everything the batch created, newest first,
	// when the batch aborts.
	RollbackOnFailure bool
	OnProgress        func(Event)
	Reporter          ProgressReporter
	Invalidator       ViewInvalidator
	Logger            logrus.FieldLogger
}

// Orchestrator creates floors and their units strictly sequentially.
// A single Orchestrator may run several batches, but one batch never
// issues concurrent calls.
//
// Cancellation is only observed between calls. A call that has started runs
// to completion on a context detached from the caller's, so whatever the
// catalog commits is always recorded in the report.
type Orchestrator struct {
	client StructureClient
	opts   Options
	log    logrus.FieldLogger
}

func NewOrchestrator(client StructureClient, opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = utils.Logger
	}
	return &Orchestrator{client: client, opts: opts, log: log}
}

// Run executes a full batch. The returned report is never nil and reflects
// whatever was created, also when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context, spec *GenerationSpec, reg *Registry) (*Report, error) {
	report := &Report{BuildingID: spec.BuildingID}
	return o.execute(ctx, spec, reg, report, Cursor{Floor: 1, Instance: 1})
}

// Resume continues a failed batch from its cursor, reusing the cursor's floor
// if it was already created. It appends to a copy of prior. A rejected report
// still produces one failed outcome.
func (o *Orchestrator) Resume(ctx context.Context, spec *GenerationSpec, reg *Registry, prior *Report) (*Report, error) {
	if err := prior.Resumable(spec.BuildingID); err != nil {
		rejected := &Report{BuildingID: spec.BuildingID}
		o.log.WithError(err).WithField("building_id", spec.BuildingID).Warn("Generation resume rejected")
		o.finish(ctx, Outcome{Status: StatusFailed, Reason: err.Error(), Err: err, Report: rejected})
		return rejected, err
	}
	report := prior.clone()
	start := report.Cursor
	if start.Floor < 1 {
		start = Cursor{Floor: 1, Instance: 1}
	}
	if start.Instance < 1 {
		start.Instance = 1
	}
	return o.execute(ctx, spec, reg, report, start)
}

func (o *Orchestrator) execute(ctx context.Context, spec *GenerationSpec, reg *Registry, report *Report, start Cursor) (*Report, error) {
	log := o.log.WithField("building_id", spec.BuildingID)

	if err := o.generate(ctx, spec, reg, report, start); err != nil {
		log.WithError(err).WithField("cursor", report.Cursor).Warn("Generation batch aborted")
		if o.opts.RollbackOnFailure {
			o.compensate(context.WithoutCancel(ctx), report)
		}
		o.finish(ctx, Outcome{Status: StatusFailed, Reason: err.Error(), Err: err, Report: report})
		return report, err
	}

	report.Completed = true
	if o.opts.Invalidator != nil {
		o.opts.Invalidator.InvalidateBuilding(spec.BuildingID)
	}
	log.WithFields(logrus.Fields{
		"floors_created": report.FloorsCreated(),
		"units_created":  report.UnitsCreated(),
	}).Info("Generation batch completed")
	o.finish(ctx, Outcome{Status: StatusSucceeded, Report: report})
	return report, nil
}

func (o *Orchestrator) generate(ctx context.Context, spec *GenerationSpec, reg *Registry, report *Report, start Cursor) error {
	if err := spec.Validate(); err != nil {
		return errors.Join(ErrInvalidSpec, err)
	}
	if o.opts.Preflight {
		if err := Preflight(spec, reg); err != nil {
			return err
		}
	}

	resolver := NewMixResolver(spec)
	for floor := start.Floor; floor <= spec.FloorCount; floor++ {
		report.Cursor = Cursor{Floor: floor, Instance: 1}
		resumed := floor == start.Floor && start.FloorID != ""
		if resumed {
			report.Cursor = start
		}
		if err := ctx.Err(); err != nil {
			return &canceledError{cursor: report.Cursor, cause: err}
		}

		mix, err := resolver.Resolve(floor)
		if err != nil {
			return err
		}

		firstEntry, firstInstance := 0, 1
		if resumed {
			firstEntry, firstInstance = start.Entry, start.Instance
		} else {
			if err := o.createFloor(ctx, spec.BuildingID, floor, mix, report); err != nil {
				return err
			}
		}

		for ei := firstEntry; ei < len(mix); ei++ {
			entry := mix[ei]
			from := 1
			if ei == firstEntry {
				from = firstInstance
			}
			report.Cursor.Entry, report.Cursor.Instance = ei, from

			cfg, ok := reg.Lookup(entry)
			if !ok {
				return &MissingConfigurationError{Floor: floor, UnitType: entry.UnitType, Key: entry.Key}
			}

			for inst := from; inst <= entry.Count; inst++ {
				report.Cursor.Instance = inst
				if err := ctx.Err(); err != nil {
					return &canceledError{cursor: report.Cursor, cause: err}
				}
				if err := o.createUnit(ctx, spec.BuildingID, floor, entry.UnitType, inst, cfg, report); err != nil {
					return err
				}
			}
		}
	}
	report.Cursor = Cursor{Floor: spec.FloorCount + 1, Instance: 1}
	return nil
}

func (o *Orchestrator) createFloor(ctx context.Context, buildingID string, floor int, mix []UnitMixEntry, report *Report) error {
	total := TotalUnits(mix)
	created, err := o.client.CreateFloor(context.WithoutCancel(ctx), catalog.CreateFloorRequest{
		BuildingID:        buildingID,
		FloorNumber:       floor,
		UnitType:          models.MixedFloorUnitType,
		TotalSubUnits:     total,
		AvailableSubUnits: total,
	})
	if err != nil {
		return &RemoteCallError{Op: OpCreateFloor, Floor: floor, Err: err}
	}

	report.Floors = append(report.Floors, FloorRecord{ID: created.ID, Number: floor, TotalSubUnits: total})
	report.Cursor.FloorID = created.ID
	o.emit(Event{Kind: EventFloorCreated, Floor: floor, ID: created.ID}, report)
	return nil
}

func (o *Orchestrator) createUnit(ctx context.Context, buildingID string, floor int, unitType string, inst int, cfg UnitTypeConfig, report *Report) error {
	plot := PlotLabel(floor, unitType, inst)
	created, err := o.client.CreateUnit(context.WithoutCancel(ctx), catalog.CreateUnitRequest{
		BuildingID:  buildingID,
		FloorID:     report.Cursor.FloorID,
		PlotNo:      plot,
		UnitType:    unitType,
		Extent:      cfg.Area,
		VillaFacing: string(cfg.Facing),
		Thumbnail:   cfg.Thumbnail,
		Images:      cfg.Gallery,
	})
	if err != nil {
		return &RemoteCallError{Op: OpCreateUnit, Floor: floor, PlotNo: plot, Err: err}
	}

	report.Units = append(report.Units, UnitRecord{
		ID:       created.ID,
		FloorID:  report.Cursor.FloorID,
		Floor:    floor,
		PlotNo:   plot,
		UnitType: unitType,
	})
	o.emit(Event{Kind: EventUnitCreated, Floor: floor, ID: created.ID, PlotNo: plot}, report)
	return nil
}

// compensate deletes units newest first, then floors newest first. A record
// the catalog no longer knows counts as deleted.
func (o *Orchestrator) compensate(ctx context.Context, report *Report) {
	for i := len(report.Units) - 1; i >= 0; i-- {
		u := report.Units[i]
		if err := o.client.DeleteUnit(ctx, u.ID); err != nil && !catalog.IsNotFound(err) {
			o.log.WithError(err).WithField("unit_id", u.ID).Error("Failed to roll back unit")
			report.CompensationErrors = append(report.CompensationErrors, err.Error())
		}
	}
	for i := len(report.Floors) - 1; i >= 0; i-- {
		f := report.Floors[i]
		if err := o.client.DeleteFloor(ctx, f.ID); err != nil && !catalog.IsNotFound(err) {
			o.log.WithError(err).WithField("floor_id", f.ID).Error("Failed to roll back floor")
			report.CompensationErrors = append(report.CompensationErrors, err.Error())
		}
	}
	report.RolledBack = true
}

func (o *Orchestrator) emit(ev Event, report *Report) {
	if o.opts.OnProgress == nil {
		return
	}
	ev.FloorsCreated = report.FloorsCreated()
	ev.UnitsCreated = report.UnitsCreated()
	o.opts.OnProgress(ev)
}

func (o *Orchestrator) finish(ctx context.Context, outcome Outcome) {
	if o.opts.Reporter != nil {
		o.opts.Reporter.Report(ctx, outcome)
	}
}

// Preflight checks that every floor resolves to a mix and every entry to a
// registered configuration, without touching the catalog.
func Preflight(spec *GenerationSpec, reg *Registry) error {
	resolver := NewMixResolver(spec)
	for floor := 1; floor <= spec.FloorCount; floor++ {
		mix, err := resolver.Resolve(floor)
		if err != nil {
			return err
		}
		for _, entry := range mix {
			if _, ok := reg.Lookup(entry); !ok {
				return &MissingConfigurationError{Floor: floor, UnitType: entry.UnitType, Key: entry.Key}
			}
		}
	}
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/config"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/generator"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/models"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/repositories"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

// GenerationService turns an admin request into one orchestrated batch.
type GenerationService struct {
	cfg      *config.Config
	client   generator.StructureClient
	views    generator.ViewInvalidator
	runRepo  repositories.GenerationRunRepository
	reporter generator.ProgressReporter
}

// NewGenerationService wires the batch dependencies. runRepo and reporter
// may be nil.
func NewGenerationService(
	cfg *config.Config,
	client generator.StructureClient,
	views generator.ViewInvalidator,
	runRepo repositories.GenerationRunRepository,
	reporter generator.ProgressReporter,
) *GenerationService {
	return &GenerationService{
		cfg:      cfg,
		client:   client,
		views:    views,
		runRepo:  runRepo,
		reporter: reporter,
	}
}

func (s *GenerationService) Generate(
	ctx context.Context,
	adminID string,
	buildingID string,
	req dtos.GenerateStructureRequest,
) (*dtos.GenerateStructureResponse, error) {
	spec := BuildSpec(buildingID, req)
	reg, err := BuildRegistry(req.UnitTypes)
	if err != nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    err.Error(),
			Err:        err,
		}
	}

	log := utils.Logger.WithFields(logrus.Fields{
		"admin_id":    adminID,
		"building_id": buildingID,
		"floor_count": spec.FloorCount,
		"unit_types":  reg.Len(),
	})

	var (
		prior       *models.GenerationRun
		priorReport *generator.Report
		rejectErr   error
	)
	if req.ResumeRunID != "" {
		prior, priorReport, rejectErr = s.claimResumable(ctx, buildingID, req.ResumeRunID)
		if rejectErr != nil && !errors.Is(rejectErr, generator.ErrNotResumable) {
			return nil, &utils.AppError{
				StatusCode: http.StatusInternalServerError,
				Code:       utils.ErrCodeInternal,
				Message:    "Failed to load the run to resume",
				Err:        rejectErr,
			}
		}
		log = log.WithField("resume_run_id", req.ResumeRunID)
	}

	run := s.startRun(ctx, adminID, spec, prior)
	reporters := generator.MultiReporter{generator.NewLogReporter(log)}
	if run != nil {
		reporters = append(reporters, &runAuditReporter{repo: s.runRepo, run: run})
	}
	if s.reporter != nil {
		reporters = append(reporters, s.reporter)
	}

	if rejectErr != nil {
		rejected := &generator.Report{BuildingID: buildingID}
		reporters.Report(ctx, generator.Outcome{
			Status: generator.StatusFailed,
			Reason: rejectErr.Error(),
			Err:    rejectErr,
			Report: rejected,
		})
		return nil, toAppError(rejectErr, summarize(run, buildingID, rejected, rejectErr))
	}

	orch := generator.NewOrchestrator(s.client, generator.Options{
		Preflight:         s.cfg.LDFlag_StructurePreflight,
		RollbackOnFailure: s.cfg.LDFlag_StructureRollbackOnFailure,
		OnProgress: func(ev generator.Event) {
			log.WithFields(logrus.Fields{
				"event":  ev.Kind,
				"floor":  ev.Floor,
				"id":     ev.ID,
				"plot":   ev.PlotNo,
				"floors": ev.FloorsCreated,
				"units":  ev.UnitsCreated,
			}).Debug("Generation progress")
		},
		Reporter:    reporters,
		Invalidator: s.views,
		Logger:      log,
	})

	var report *generator.Report
	if priorReport != nil {
		report, err = orch.Resume(ctx, spec, reg, priorReport)
	} else {
		report, err = orch.Run(ctx, spec, reg)
	}

	resp := summarize(run, buildingID, report, err)
	if err != nil {
		return nil, toAppError(err, resp)
	}
	return resp, nil
}

// claimResumable loads the stored report of a failed run and marks that run
// resumed. Reports are only ever read back from the audit table, never taken
// from the caller.
func (s *GenerationService) claimResumable(
	ctx context.Context,
	buildingID string,
	runID string,
) (*models.GenerationRun, *generator.Report, error) {
	if s.runRepo == nil {
		return nil, nil, fmt.Errorf("%w: run auditing is disabled", generator.ErrNotResumable)
	}
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid run id %q", generator.ErrNotResumable, runID)
	}
	prior, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if prior == nil {
		return nil, nil, fmt.Errorf("%w: unknown run %s", generator.ErrNotResumable, id)
	}
	if prior.BuildingID != buildingID {
		return nil, nil, fmt.Errorf("%w: run %s belongs to another building", generator.ErrNotResumable, id)
	}
	if prior.Status != models.GenerationRunFailed || len(prior.Report) == 0 {
		return nil, nil, fmt.Errorf("%w: run %s is %s", generator.ErrNotResumable, id, prior.Status)
	}

	var report generator.Report
	if err := json.Unmarshal(prior.Report, &report); err != nil {
		return nil, nil, fmt.Errorf("%w: stored report of run %s is unreadable", generator.ErrNotResumable, id)
	}
	if err := report.Resumable(buildingID); err != nil {
		return nil, nil, err
	}

	if err := s.runRepo.MarkResumed(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: run %s was already resumed", generator.ErrNotResumable, id)
		}
		return nil, nil, err
	}
	return prior, &report, nil
}

// BuildSpec converts the request body into a generation spec.
func BuildSpec(buildingID string, req dtos.GenerateStructureRequest) *generator.GenerationSpec {
	spec := &generator.GenerationSpec{
		BuildingID:          buildingID,
		FloorCount:          req.FloorCount,
		SameMixForAllFloors: req.SameMixForAllFloors,
		GlobalMix:           toMix(req.GlobalMix),
	}
	if req.PerFloorMix != nil {
		spec.PerFloorMix = make(map[int][]generator.UnitMixEntry, len(req.PerFloorMix))
		for floor, mix := range req.PerFloorMix {
			spec.PerFloorMix[floor] = toMix(mix)
		}
	}
	return spec
}

// BuildRegistry registers every requested unit type configuration.
func BuildRegistry(configs []dtos.UnitTypeConfigRequest) (*generator.Registry, error) {
	reg := generator.NewRegistry()
	for _, c := range configs {
		facing, err := models.ParseFacing(c.Facing)
		if err != nil {
			return nil, fmt.Errorf("unit type %q: %w", c.UnitType, err)
		}
		cfg := generator.UnitTypeConfig{
			Key:      c.Key,
			UnitType: c.UnitType,
			Area:     c.Area,
			Facing:   facing,
		}
		if c.Thumbnail != nil {
			cfg.Thumbnail = utils.Ptr(toAsset(*c.Thumbnail))
		}
		for _, g := range c.Gallery {
			cfg.Gallery = append(cfg.Gallery, toAsset(g))
		}
		if _, err := reg.Put(cfg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func toMix(in []dtos.UnitMixEntryRequest) []generator.UnitMixEntry {
	if in == nil {
		return nil
	}
	out := make([]generator.UnitMixEntry, 0, len(in))
	for _, e := range in {
		out = append(out, generator.UnitMixEntry{Key: e.Key, UnitType: e.UnitType, Count: e.Count})
	}
	return out
}

func toAsset(a dtos.AssetRequest) generator.Asset {
	ct := a.ContentType
	if ct == "" {
		ct = http.DetectContentType(a.Data)
	}
	return generator.Asset{Filename: a.Filename, ContentType: ct, Data: a.Data}
}

func (s *GenerationService) startRun(
	ctx context.Context,
	adminID string,
	spec *generator.GenerationSpec,
	prior *models.GenerationRun,
) *models.GenerationRun {
	if s.runRepo == nil {
		return nil
	}
	admin, err := uuid.Parse(adminID)
	if err != nil {
		utils.Logger.WithError(err).Warnf("Admin id %q is not a UUID, auditing as nil", adminID)
		admin = uuid.Nil
	}
	run := &models.GenerationRun{
		ID:         uuid.New(),
		AdminID:    admin,
		BuildingID: spec.BuildingID,
		FloorCount: spec.FloorCount,
		Status:     models.GenerationRunRunning,
		StartedAt:  time.Now().UTC(),
	}
	if prior != nil {
		run.ResumedFrom = utils.Ptr(prior.ID)
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		utils.Logger.WithError(err).Error("Failed to record generation run start")
		return nil
	}
	return run
}

func summarize(run *models.GenerationRun, buildingID string, report *generator.Report, err error) *dtos.GenerateStructureResponse {
	resp := &dtos.GenerateStructureResponse{
		BuildingID: buildingID,
		Status:     generator.StatusSucceeded,
		Report:     report,
	}
	if run != nil {
		resp.RunID = run.ID.String()
	}
	if report != nil {
		resp.FloorsCreated = report.FloorsCreated()
		resp.UnitsCreated = report.UnitsCreated()
		resp.RolledBack = report.RolledBack
	}
	if err != nil {
		resp.Status = generator.StatusFailed
		resp.Reason = err.Error()
	}
	return resp
}

func toAppError(err error, resp *dtos.GenerateStructureResponse) *utils.AppError {
	var (
		missing *generator.MissingConfigurationError
		remote  *generator.RemoteCallError
	)
	switch {
	case errors.As(err, &missing):
		return &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeMissingConfiguration,
			Message:    missing.Error(),
			Details:    resp,
			Err:        errors.Join(utils.ErrMissingConfiguration, err),
		}
	case errors.As(err, &remote):
		return &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Catalog service call failed",
			Details:    resp,
			Err:        errors.Join(utils.ErrExternalServiceFailure, err),
		}
	case errors.Is(err, generator.ErrBatchCanceled):
		return &utils.AppError{
			StatusCode: http.StatusRequestTimeout,
			Code:       utils.ErrCodeRequestCancelled,
			Message:    "Generation was cancelled",
			Details:    resp,
			Err:        errors.Join(utils.ErrRequestCancelled, err),
		}
	case errors.Is(err, generator.ErrInvalidSpec):
		return &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    "Invalid generation spec",
			Details:    resp,
			Err:        err,
		}
	case errors.Is(err, generator.ErrNotResumable):
		return &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeNotResumable,
			Message:    "The previous run cannot be resumed",
			Details:    resp,
			Err:        err,
		}
	default:
		return &utils.AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       utils.ErrCodeInternal,
			Message:    "An unexpected error occurred",
			Details:    resp,
			Err:        err,
		}
	}
}

// runAuditReporter closes the generation_runs row of one batch.
type runAuditReporter struct {
	repo repositories.GenerationRunRepository
	run  *models.GenerationRun
}

func (a *runAuditReporter) Report(ctx context.Context, o generator.Outcome) {
	a.run.Status = models.GenerationRunSucceeded
	if o.Status == generator.StatusFailed {
		a.run.Status = models.GenerationRunFailed
		a.run.Reason = utils.Ptr(o.Reason)
	}
	a.run.FloorsCreated = o.Report.FloorsCreated()
	a.run.UnitsCreated = o.Report.UnitsCreated()
	a.run.RolledBack = o.Report.RolledBack
	a.run.FinishedAt = utils.Ptr(time.Now().UTC())
	if raw, err := json.Marshal(o.Report); err != nil {
		utils.Logger.WithError(err).WithField("run_id", a.run.ID).Warn("Failed to encode generation report")
	} else {
		a.run.Report = raw
	}

	if err := a.repo.Finish(context.WithoutCancel(ctx), a.run); err != nil {
		utils.Logger.WithError(err).WithField("run_id", a.run.ID).Error("Failed to record generation run outcome")
	}
}

package generator

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome is the single terminal signal of a batch.
type Outcome struct {
	Status Status
	Reason string
	Err    error
	Report *Report
}

// ProgressReporter receives exactly one Outcome per batch.
type ProgressReporter interface {
	Report(ctx context.Context, outcome Outcome)
}

type ReporterFunc func(ctx context.Context, outcome Outcome)

func (f ReporterFunc) Report(ctx context.Context, outcome Outcome) { f(ctx, outcome) }

// MultiReporter forwards an outcome to every non-nil reporter in order.
type MultiReporter []ProgressReporter

func (m MultiReporter) Report(ctx context.Context, outcome Outcome) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, outcome)
		}
	}
}

type logReporter struct {
	log logrus.FieldLogger
}

func NewLogReporter(log logrus.FieldLogger) ProgressReporter {
	return &logReporter{log: log}
}

func (l *logReporter) Report(_ context.Context, o Outcome) {
	entry := l.log.WithFields(logrus.Fields{
		"building_id":    o.Report.BuildingID,
		"floors_created": o.Report.FloorsCreated(),
		"units_created":  o.Report.UnitsCreated(),
		"rolled_back":    o.Report.RolledBack,
	})
	if o.Status == StatusSucceeded {
		entry.Info("Structure generation succeeded")
		return
	}
	entry.WithError(o.Err).Warnf("Structure generation failed: %s", o.Reason)
}

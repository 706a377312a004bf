// Package service wires the work source, planner and artifact writer into a
// single runner invocation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/lessonplan/internal/generate"
	"github.com/raphaelgruber/lessonplan/internal/models"
	"github.com/raphaelgruber/lessonplan/internal/queue"
)

// cleanupTimeout bounds restore and history writes after the run context is done.
const cleanupTimeout = 30 * time.Second

// ArtifactWriter persists a job result and returns its location.
type ArtifactWriter interface {
	Write(result models.JobResult) (string, error)
}

// History records finished runs. db.Client implements it.
type History interface {
	RecordRun(ctx context.Context, run models.RunRecord) error
}

// RunReport summarizes one invocation.
type RunReport struct {
	ID           string
	Status       models.RunStatus
	Topic        models.Topic
	Result       models.JobResult
	ArtifactPath string
	Restored     bool
}

// Runner performs one topic-to-artifact run.
type Runner struct {
	source   queue.Source
	planner  *generate.Planner
	catalog  generate.Catalog
	segments int
	writer   ArtifactWriter
	history  History
	logger   *slog.Logger
}

// NewRunner creates a runner. segments below 1 are treated as 1.
func NewRunner(source queue.Source, planner *generate.Planner, catalog generate.Catalog, segments int, writer ArtifactWriter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source:   source,
		planner:  planner,
		catalog:  catalog,
		segments: generate.ClampSegments(segments),
		writer:   writer,
		logger:   logger,
	}
}

// SetHistory enables run history persistence. nil disables it.
func (r *Runner) SetHistory(h History) {
	r.history = h
}

// Run takes the next topic, generates it and writes the artifact.
// A queued topic is put back at the head of the queue when the job does not
// complete or the artifact cannot be written. The returned error is non-nil
// for every status except no_work and completed.
func (r *Runner) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{ID: uuid.New().String()[:8]} // Short ID for convenience

	topic, ok, err := r.source.Next(ctx)
	if err != nil {
		report.Status = models.RunStatusFailed
		return report, fmt.Errorf("next topic: %w", err)
	}
	if !ok {
		report.Status = models.RunStatusNoWork
		r.logger.Info("nothing to do", "run_id", report.ID)
		return report, nil
	}
	report.Topic = topic

	log := r.logger.With("run_id", report.ID, "topic", topic.Text, "source", topic.Source.String())
	log.Info("run started", "periods", r.segments, "catalog", r.catalog.String())

	result := r.planner.Run(ctx, topic, r.segments, r.catalog)
	report.Result = result

	var errs []error
	if failed, ok := result.Failure(); ok {
		errs = append(errs, fmt.Errorf("period %d of %d: %s", failed.Index, failed.Total, failed.Error))
	}

	writeFailed := false
	if result.Succeeded() > 0 {
		path, werr := r.writer.Write(result)
		if werr != nil {
			writeFailed = true
			errs = append(errs, werr)
			log.Error("artifact write failed", "error", werr)
		} else {
			report.ArtifactPath = path
			log.Info("artifact written", "path", path)
		}
	}

	switch {
	case result.Completed && !writeFailed:
		report.Status = models.RunStatusCompleted
	case report.ArtifactPath != "":
		report.Status = models.RunStatusPartial
	default:
		report.Status = models.RunStatusFailed
	}

	// Bookkeeping must outlive cancellation of the run itself.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if report.Status != models.RunStatusCompleted && topic.Persisted() {
		if rerr := r.source.Restore(cleanupCtx, topic); rerr != nil {
			errs = append(errs, fmt.Errorf("restore topic: %w", rerr))
			log.Error("failed to restore topic", "error", rerr)
		} else {
			report.Restored = true
		}
	}

	runErr := errors.Join(errs...)
	r.record(cleanupCtx, report, runErr)

	if runErr != nil {
		log.Warn("run finished", "status", report.Status, "restored", report.Restored, "error", runErr)
		return report, fmt.Errorf("run %s %s: %w", report.ID, report.Status, runErr)
	}
	log.Info("run finished", "status", report.Status, "backends", result.Backends(),
		"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	return report, nil
}

// record persists the run. Failures are logged and never fail the run.
func (r *Runner) record(ctx context.Context, report RunReport, runErr error) {
	if r.history == nil {
		return
	}
	rec := models.RunRecord{
		RunID:      report.ID,
		Topic:      report.Topic.Text,
		Source:     report.Topic.Source.String(),
		Status:     report.Status,
		Periods:    r.segments,
		Succeeded:  report.Result.Succeeded(),
		Backends:   report.Result.Backends(),
		Restored:   report.Restored,
		StartedAt:  report.Result.StartedAt,
		FinishedAt: report.Result.FinishedAt,
	}
	if report.ArtifactPath != "" {
		rec.ArtifactPath = &report.ArtifactPath
	}
	if runErr != nil {
		msg := runErr.Error()
		rec.Error = &msg
	}
	if err := r.history.RecordRun(ctx, rec); err != nil {
		r.logger.Warn("failed to record run history", "run_id", report.ID, "error", err)
	}
}

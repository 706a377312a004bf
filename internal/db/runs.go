package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/raphaelgruber/lessonplan/internal/models"
)

// RecordRun inserts a finished run into generation_run.
func (c *Client) RecordRun(ctx context.Context, run models.RunRecord) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE generation_run SET
			run_id = $run_id,
			topic = $topic,
			source = $source,
			status = $status,
			periods = $periods,
			succeeded = $succeeded,
			backends = $backends,
			artifact_path = $artifact_path,
			restored = $restored,
			error = $error,
			started_at = $started_at,
			finished_at = $finished_at
	`, map[string]any{
		"run_id":        run.RunID,
		"topic":         run.Topic,
		"source":        run.Source,
		"status":        string(run.Status),
		"periods":       run.Periods,
		"succeeded":     run.Succeeded,
		"backends":      nonNil(run.Backends),
		"artifact_path": run.ArtifactPath,
		"restored":      run.Restored,
		"error":         run.Error,
		"started_at":    run.StartedAt,
		"finished_at":   run.FinishedAt,
	})
	if err != nil {
		return fmt.Errorf("record run: %w", wrapQueryError(err))
	}
	return nil
}

// GetRun retrieves a run by its short run ID.
func (c *Client) GetRun(ctx context.Context, runID string) (*models.RunRecord, error) {
	results, err := surrealdb.Query[[]models.RunRecord](ctx, c.db, `
		SELECT * FROM generation_run WHERE run_id = $run_id LIMIT 1
	`, map[string]any{"run_id": runID})
	if err != nil {
		return nil, fmt.Errorf("get run: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get run %s: %w", runID, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// ListRuns returns the most recent runs, newest first.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := surrealdb.Query[[]models.RunRecord](ctx, c.db, `
		SELECT * FROM generation_run ORDER BY started_at DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.RunRecord{}, nil
	}
	return (*results)[0].Result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

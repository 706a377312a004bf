package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/lessonplan/internal/models"
)

// DefaultPause is the wait between consecutive periods of one job.
const DefaultPause = 5 * time.Second

// PlannerConfig configures a Planner.
type PlannerConfig struct {
	// Pause is inserted before every period after the first.
	Pause time.Duration
}

// DefaultPlannerConfig returns the production defaults.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{Pause: DefaultPause}
}

// Observer follows a job period by period. Calls arrive on the goroutine
// running the job.
type Observer interface {
	SegmentStarted(index, total int)
	SegmentFinished(result models.SegmentResult)
}

// Planner splits a job into periods and generates them in order.
type Planner struct {
	driver   *Driver
	cfg      PlannerConfig
	sleep    Sleeper
	now      func() time.Time
	observer Observer
	logger   *slog.Logger
}

// NewPlanner creates a Planner that generates each period through driver.
func NewPlanner(driver *Driver, cfg PlannerConfig, logger *slog.Logger) *Planner {
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		driver: driver,
		cfg:    cfg,
		sleep:  Sleep,
		now:    time.Now,
		logger: logger,
	}
}

// SetSleeper replaces the inter-period sleeper.
func (p *Planner) SetSleeper(s Sleeper) {
	if s != nil {
		p.sleep = s
	}
}

// SetClock replaces the time source used for result timestamps.
func (p *Planner) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// SetObserver sets the period observer. nil disables it.
func (p *Planner) SetObserver(o Observer) {
	p.observer = o
}

// ClampSegments returns n, or 1 when n is below 1.
func ClampSegments(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Run generates segments periods for topic. It stops at the first period that
// exhausts the catalog and returns whatever succeeded before it.
func (p *Planner) Run(ctx context.Context, topic models.Topic, segments int, catalog Catalog) models.JobResult {
	total := ClampSegments(segments)
	result := models.JobResult{
		Topic:     topic,
		Segments:  make([]models.SegmentResult, 0, total),
		StartedAt: p.now(),
	}
	hint := ""

	for i := 1; i <= total; i++ {
		if i > 1 {
			if err := p.sleep(ctx, p.cfg.Pause); err != nil {
				return p.fail(result, i, total, fmt.Errorf("pause before segment %d: %w", i, err), 0)
			}
		}

		if p.observer != nil {
			p.observer.SegmentStarted(i, total)
		}
		req := Request{Topic: topic.Text, Segment: i, Total: total}
		start := p.now()
		gen, err := p.driver.Run(ctx, req, catalog, hint)
		elapsed := p.now().Sub(start)
		if err != nil {
			p.logger.Error("segment failed, stopping job",
				"topic", topic.Text, "segment", i, "total", total, "error", err)
			return p.fail(result, i, total, err, elapsed)
		}

		seg := models.SegmentResult{
			Index:    i,
			Total:    total,
			Content:  gen.Content,
			Backend:  gen.Backend,
			Duration: elapsed,
		}
		result.Segments = append(result.Segments, seg)
		p.notifyFinished(seg)
		hint = gen.Backend
		p.logger.Info("segment generated",
			"topic", topic.Text, "segment", i, "total", total, "backend", gen.Backend, "attempts", gen.Attempts)
	}

	result.Completed = true
	result.FinishedAt = p.now()
	return result
}

func (p *Planner) fail(result models.JobResult, index, total int, err error, elapsed time.Duration) models.JobResult {
	seg := models.SegmentResult{
		Index:    index,
		Total:    total,
		Failed:   true,
		Error:    err.Error(),
		Duration: elapsed,
	}
	result.Segments = append(result.Segments, seg)
	p.notifyFinished(seg)
	result.Completed = false
	result.FinishedAt = p.now()
	return result
}

func (p *Planner) notifyFinished(seg models.SegmentResult) {
	if p.observer != nil {
		p.observer.SegmentFinished(seg)
	}
}

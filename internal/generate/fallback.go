package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrCatalogExhausted is returned when every backend in the catalog failed.
var ErrCatalogExhausted = errors.New("all backends exhausted")

// DefaultBackoff is the wait before the single retry of a rate-limited backend.
const DefaultBackoff = 10 * time.Second

// Recorder receives one call per attempt. metrics.Collector implements it.
type Recorder interface {
	RecordAttempt(backend string, kind OutcomeKind, duration time.Duration)
}

// MultiRecorder passes every attempt to each of its recorders in order.
type MultiRecorder []Recorder

// RecordAttempt implements Recorder.
func (m MultiRecorder) RecordAttempt(backend string, kind OutcomeKind, duration time.Duration) {
	for _, r := range m {
		if r != nil {
			r.RecordAttempt(backend, kind, duration)
		}
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DriverConfig configures a Driver.
type DriverConfig struct {
	// Backoff is the fixed wait before retrying a rate-limited backend.
	Backoff time.Duration
}

// DefaultDriverConfig returns the production defaults.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{Backoff: DefaultBackoff}
}

// Generation is a successful Driver run.
type Generation struct {
	Content  string
	Backend  string
	Attempts int
}

// Driver walks a catalog until one backend succeeds.
// It holds no state between runs.
type Driver struct {
	attempter Attempter
	cfg       DriverConfig
	recorder  Recorder
	sleep     Sleeper
	logger    *slog.Logger
}

// NewDriver creates a Driver that issues attempts through a.
func NewDriver(a Attempter, cfg DriverConfig, logger *slog.Logger) *Driver {
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		attempter: a,
		cfg:       cfg,
		sleep:     Sleep,
		logger:    logger,
	}
}

// SetRecorder sets the attempt recorder. nil disables recording.
func (d *Driver) SetRecorder(r Recorder) {
	d.recorder = r
}

// SetSleeper replaces the backoff sleeper.
func (d *Driver) SetSleeper(s Sleeper) {
	if s != nil {
		d.sleep = s
	}
}

// Run tries backends in the order catalog.Prefer(hint) until one succeeds.
//
// A rate-limited backend gets exactly one retry after the configured backoff;
// if that retry fails in any way the driver moves on. Any other failure moves
// on immediately. A cancelled ctx stops the cascade before the next attempt;
// an in-flight attempt is never interrupted by the driver.
func (d *Driver) Run(ctx context.Context, req Request, catalog Catalog, hint string) (Generation, error) {
	order := catalog.Prefer(hint)
	if len(order) == 0 {
		return Generation{}, fmt.Errorf("%w: catalog is empty", ErrCatalogExhausted)
	}

	var errs []error
	attempts := 0

	for _, backend := range order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("stopped before %s: %w", backend, err))
			break
		}

		out := d.attempt(ctx, backend, req)
		attempts++
		if out.Kind == KindSuccess {
			return Generation{Content: out.Content, Backend: backend, Attempts: attempts}, nil
		}

		if out.Kind == KindRetryable {
			d.logger.Warn("backend rate limited, retrying once",
				"backend", backend, "segment", req.Segment, "backoff", d.cfg.Backoff, "error", out.Err)
			if err := d.sleep(ctx, d.cfg.Backoff); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", backend, out.Err))
				errs = append(errs, fmt.Errorf("backoff interrupted: %w", err))
				break
			}
			out = d.attempt(ctx, backend, req)
			attempts++
			if out.Kind == KindSuccess {
				return Generation{Content: out.Content, Backend: backend, Attempts: attempts}, nil
			}
		}

		d.logger.Warn("backend failed, trying next",
			"backend", backend, "segment", req.Segment, "outcome", out.Kind.String(), "error", out.Err)
		errs = append(errs, fmt.Errorf("%s: %w", backend, out.Err))
	}

	d.logger.Error("catalog exhausted", "topic", req.Topic, "segment", req.Segment, "attempts", attempts)
	return Generation{Attempts: attempts}, fmt.Errorf("%w: %w", ErrCatalogExhausted, errors.Join(errs...))
}

func (d *Driver) attempt(ctx context.Context, backend string, req Request) Outcome {
	d.logger.Info("attempting generation",
		"backend", backend, "topic", req.Topic, "segment", req.Segment, "total", req.Total)

	start := time.Now()
	out := d.attempter.Attempt(ctx, backend, req)
	duration := time.Since(start)

	if d.recorder != nil {
		d.recorder.RecordAttempt(backend, out.Kind, duration)
	}
	d.logger.Debug("attempt finished",
		"backend", backend, "outcome", out.Kind.String(), "duration_ms", duration.Milliseconds())
	return out
}

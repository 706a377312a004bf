package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/lessonplan/internal/config"
	"github.com/raphaelgruber/lessonplan/internal/generate"
	"github.com/raphaelgruber/lessonplan/internal/prompt"
)

// Generator produces text from a system and user prompt. *Model implements it.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Factory builds a Generator for a backend.
type Factory func(ctx context.Context, b Backend) (Generator, error)

// Caller implements generate.Attempter over langchaingo models.
// Models are created on first use and reused for the rest of the run.
type Caller struct {
	provider config.Provider
	timeout  time.Duration
	prompts  prompt.Options
	factory  Factory
	logger   *slog.Logger

	mu     sync.Mutex
	models map[string]Generator
}

// Compile-time check that Caller implements generate.Attempter.
var _ generate.Attempter = (*Caller)(nil)

// NewCaller creates a Caller from configuration.
func NewCaller(cfg config.Config, logger *slog.Logger) *Caller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Caller{
		provider: cfg.Provider,
		timeout:  cfg.AttemptTimeout,
		prompts: prompt.Options{
			Subject:       cfg.Subject,
			PeriodMinutes: cfg.PeriodMinutes,
			Language:      cfg.Language,
		},
		logger: logger,
		models: make(map[string]Generator),
	}
	c.factory = func(ctx context.Context, b Backend) (Generator, error) {
		return NewModel(ctx, cfg, b)
	}
	return c
}

// SetFactory replaces how generators are built.
func (c *Caller) SetFactory(f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factory = f
	c.models = make(map[string]Generator)
}

// Attempt asks backend to generate one segment of req.
func (c *Caller) Attempt(ctx context.Context, backend string, req generate.Request) generate.Outcome {
	b, err := ParseBackend(backend, c.provider)
	if err != nil {
		return generate.Terminal(err)
	}

	gen, err := c.generator(ctx, b)
	if err != nil {
		return generate.Terminal(fmt.Errorf("init %s: %w", b, err))
	}

	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	system, user := prompt.Lesson(c.prompts, req.Topic, req.Segment, req.Total)
	text, err := gen.GenerateWithSystem(attemptCtx, system, user)
	if err != nil {
		c.logger.Debug("provider error", "backend", b.String(), "error", err)
		return Classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return generate.Terminal(fmt.Errorf("%s: %w", b, ErrEmptyResponse))
	}
	return generate.Success(text)
}

func (c *Caller) generator(ctx context.Context, b Backend) (Generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := b.String()
	if gen, ok := c.models[key]; ok {
		return gen, nil
	}
	gen, err := c.factory(ctx, b)
	if err != nil {
		return nil, err
	}
	c.models[key] = gen
	return gen, nil
}

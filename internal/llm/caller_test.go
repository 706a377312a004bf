package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/lessonplan/internal/config"
	"github.com/raphaelgruber/lessonplan/internal/generate"
)

type fakeGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	systems  []string
	users    []string
	deadline bool
}

func (f *fakeGenerator) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, systemPrompt)
	f.users = append(f.users, userPrompt)
	_, f.deadline = ctx.Deadline()
	return f.text, f.err
}

func testCaller(t *testing.T, gens map[string]*fakeGenerator) (*Caller, *[]string) {
	t.Helper()
	cfg := config.Config{
		Provider:       config.ProviderGoogleAI,
		AttemptTimeout: time.Minute,
		Subject:        "high school chemistry",
		PeriodMinutes:  45,
		Language:       "English",
	}
	c := NewCaller(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var built []string
	c.SetFactory(func(_ context.Context, b Backend) (Generator, error) {
		built = append(built, b.String())
		g, ok := gens[b.String()]
		if !ok {
			return nil, errors.New("unknown backend")
		}
		return g, nil
	})
	return c, &built
}

func TestCallerAttemptSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "# Plan"}
	c, _ := testCaller(t, map[string]*fakeGenerator{"googleai:gemini-2.5-flash": gen})

	out := c.Attempt(context.Background(), "gemini-2.5-flash", generate.Request{Topic: "Redox", Segment: 1, Total: 1})

	require.Equal(t, generate.KindSuccess, out.Kind)
	assert.Equal(t, "# Plan", out.Content)
	require.Len(t, gen.users, 1)
	assert.Contains(t, gen.users[0], "Redox")
	assert.True(t, gen.deadline, "attempt should run under a timeout")
}

func TestCallerCachesModels(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	c, built := testCaller(t, map[string]*fakeGenerator{"googleai:gemini-2.5-flash": gen})

	for i := 1; i <= 3; i++ {
		out := c.Attempt(context.Background(), "gemini-2.5-flash", generate.Request{Topic: "Acids", Segment: i, Total: 3})
		require.Equal(t, generate.KindSuccess, out.Kind)
	}

	assert.Equal(t, []string{"googleai:gemini-2.5-flash"}, *built)
	require.Len(t, gen.users, 3)
	assert.Contains(t, gen.users[2], "period 3 of 3")
}

func TestCallerClassifiesProviderErrors(t *testing.T) {
	gens := map[string]*fakeGenerator{
		"googleai:busy":    {err: errors.New("Error 429: RESOURCE_EXHAUSTED")},
		"googleai:missing": {err: errors.New("model not found")},
		"googleai:blank":   {text: "   \n"},
	}
	c, _ := testCaller(t, gens)
	req := generate.Request{Topic: "Bonds", Segment: 1, Total: 1}

	assert.Equal(t, generate.KindRetryable, c.Attempt(context.Background(), "busy", req).Kind)
	assert.Equal(t, generate.KindTerminal, c.Attempt(context.Background(), "missing", req).Kind)

	blank := c.Attempt(context.Background(), "blank", req)
	assert.Equal(t, generate.KindTerminal, blank.Kind)
	assert.ErrorIs(t, blank.Err, ErrEmptyResponse)
}

func TestCallerInitFailureIsTerminal(t *testing.T) {
	c, _ := testCaller(t, map[string]*fakeGenerator{})

	out := c.Attempt(context.Background(), "openai:gpt-4o-mini", generate.Request{Topic: "x", Segment: 1, Total: 1})
	assert.Equal(t, generate.KindTerminal, out.Kind)

	out = c.Attempt(context.Background(), "", generate.Request{Topic: "x", Segment: 1, Total: 1})
	assert.Equal(t, generate.KindTerminal, out.Kind)
}

func TestNewModelRequiresKeys(t *testing.T) {
	ctx := context.Background()
	_, err := NewModel(ctx, config.Config{}, Backend{config.ProviderGoogleAI, "gemini-2.5-flash"})
	assert.Error(t, err)
	_, err = NewModel(ctx, config.Config{}, Backend{config.ProviderOpenAI, "gpt-4o"})
	assert.Error(t, err)
	_, err = NewModel(ctx, config.Config{}, Backend{config.ProviderAnthropic, "claude"})
	assert.Error(t, err)
	_, err = NewModel(ctx, config.Config{}, Backend{config.Provider("nope"), "m"})
	assert.Error(t, err)
}

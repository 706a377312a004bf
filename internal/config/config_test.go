package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load consults so the host environment
// cannot leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"LESSONPLAN_PROVIDER", "LESSONPLAN_MODELS", "OLLAMA_HOST", "AWS_REGION",
		"LESSONPLAN_ATTEMPT_TIMEOUT", "LESSONPLAN_RETRY_BACKOFF", "LESSONPLAN_SEGMENT_PAUSE",
		"LESSONPLAN_TOPIC", "LESSONPLAN_TOPIC_FILE", "LESSONPLAN_PERIODS", "LESSONPLAN_QUEUE_BACKEND",
		"LESSONPLAN_SUBJECT", "LESSONPLAN_LANGUAGE", "LESSONPLAN_PERIOD_MINUTES", "LESSONPLAN_OUTPUT_DIR",
		"SURREALDB_URL", "SURREALDB_NAMESPACE", "SURREALDB_DATABASE", "SURREALDB_USER",
		"SURREALDB_PASS", "SURREALDB_AUTH_LEVEL", "LESSONPLAN_RECORD_HISTORY",
		"LESSONPLAN_LOG_FILE", "LESSONPLAN_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, ProviderGoogleAI, cfg.Provider)
	assert.Equal(t, DefaultModels, cfg.Models)
	assert.Equal(t, "topics.txt", cfg.TopicFile)
	assert.Equal(t, "generated_plans", cfg.OutputDir)
	assert.Equal(t, 1, cfg.Periods)
	assert.Equal(t, 10*time.Second, cfg.RetryBackoff)
	assert.Equal(t, QueueFile, cfg.QueueBackend)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("LESSONPLAN_MODELS", " m1, ,openai:gpt-4o ")
	t.Setenv("LESSONPLAN_TOPIC", "  Electrolysis ")
	t.Setenv("LESSONPLAN_PERIODS", "3")
	t.Setenv("LESSONPLAN_RETRY_BACKOFF", "2s")
	t.Setenv("LESSONPLAN_SEGMENT_PAUSE", "bogus")
	t.Setenv("LESSONPLAN_LOG_LEVEL", "debug")
	t.Setenv("LESSONPLAN_RECORD_HISTORY", "true")

	cfg := Load()
	assert.Equal(t, "key", cfg.GeminiAPIKey)
	assert.Equal(t, []string{"m1", "openai:gpt-4o"}, cfg.Models)
	assert.Equal(t, "Electrolysis", cfg.Topic)
	assert.Equal(t, 3, cfg.Periods)
	assert.Equal(t, 2*time.Second, cfg.RetryBackoff)
	assert.Equal(t, 5*time.Second, cfg.SegmentPause, "invalid duration keeps default")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.RecordHistory)
}

func TestParsePeriods(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-2", 1},
		{"1", 1},
		{" 4 ", 4},
	}
	for _, tt := range tests {
		if got := ParsePeriods(tt.in); got != tt.want {
			t.Errorf("ParsePeriods(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLoadFileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lessonplan.yaml")
	content := `
provider: OpenAI
models: [gpt-4o, gpt-4o-mini]
periods: -1
retry_backoff: 30s
output_dir: out
record_history: true
surrealdb:
  namespace: school
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LESSONPLAN_OUTPUT_DIR", "from-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, cfg.Models)
	assert.Equal(t, 1, cfg.Periods)
	assert.Equal(t, 30*time.Second, cfg.RetryBackoff)
	assert.Equal(t, "from-env", cfg.OutputDir, "environment wins over file")
	assert.True(t, cfg.RecordHistory)
	assert.Equal(t, "school", cfg.SurrealDBNamespace)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadFileMissingIsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModels, cfg.Models)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: [unterminated"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	cfg.Models = nil
	cfg.Provider = "nope"
	cfg.QueueBackend = "redis"
	cfg.RetryBackoff = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"model", "provider", "queue backend", "non-negative"} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("dequeued topic", "topic", "Redox")

	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, stderr.String(), "topic=Redox")
	assert.Contains(t, file.String(), `"topic":"Redox"`)
}

func TestSetupLoggerWithoutFile(t *testing.T) {
	logger, cleanup := SetupLogger("", slog.LevelInfo)
	require.NotNil(t, logger)
	assert.NoError(t, cleanup())
}

// Package config loads runner configuration from an optional YAML file and
// environment variables. No other package reads the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM provider.
type Provider string

const (
	ProviderGoogleAI  Provider = "googleai"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderBedrock   Provider = "bedrock"
)

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogleAI, ProviderOpenAI, ProviderAnthropic, ProviderOllama, ProviderBedrock:
		return true
	}
	return false
}

// Queue backends.
const (
	QueueFile      = "file"
	QueueSurrealDB = "surrealdb"
)

// DefaultModels is the catalog used when none is configured, most preferred first.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}

// Config holds all configuration values.
type Config struct {
	// Generation backends
	Provider        Provider // default provider for backends without a "provider:" prefix
	Models          []string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string
	AttemptTimeout  time.Duration
	RetryBackoff    time.Duration
	SegmentPause    time.Duration

	// Work intake
	Topic        string
	TopicFile    string
	Periods      int
	QueueBackend string

	// Prompt
	Subject       string
	PeriodMinutes int
	Language      string

	// Output
	OutputDir string

	// SurrealDB connection (queue backend "surrealdb" and run history)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string
	RecordHistory      bool

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the YAML shape. Credentials are only read from the environment.
type fileConfig struct {
	Provider       string        `yaml:"provider"`
	Models         []string      `yaml:"models"`
	OllamaHost     string        `yaml:"ollama_host"`
	AWSRegion      string        `yaml:"aws_region"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	SegmentPause   time.Duration `yaml:"segment_pause"`
	TopicFile      string        `yaml:"topic_file"`
	Periods        int           `yaml:"periods"`
	QueueBackend   string        `yaml:"queue_backend"`
	Subject        string        `yaml:"subject"`
	PeriodMinutes  int           `yaml:"period_minutes"`
	Language       string        `yaml:"language"`
	OutputDir      string        `yaml:"output_dir"`
	RecordHistory  *bool         `yaml:"record_history"`
	SurrealDB      struct {
		URL       string `yaml:"url"`
		Namespace string `yaml:"namespace"`
		Database  string `yaml:"database"`
		AuthLevel string `yaml:"auth_level"`
	} `yaml:"surrealdb"`
	Logging struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func defaults() Config {
	return Config{
		Provider:       ProviderGoogleAI,
		Models:         append([]string(nil), DefaultModels...),
		OllamaHost:     "http://localhost:11434",
		AWSRegion:      "us-east-1",
		AttemptTimeout: 120 * time.Second,
		RetryBackoff:   10 * time.Second,
		SegmentPause:   5 * time.Second,

		TopicFile:    "topics.txt",
		Periods:      1,
		QueueBackend: QueueFile,

		Subject:       "high school chemistry",
		PeriodMinutes: 45,
		Language:      "Simplified Chinese",

		OutputDir: "generated_plans",

		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "lessonplan",
		SurrealDBDatabase:  "runner",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		LogFile:  "",
		LogLevel: slog.LevelInfo,
	}
}

// Load reads configuration from environment variables only.
func Load() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile overlays the YAML file at path on the defaults, then applies
// environment variables. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
			fc.apply(&cfg)
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) {
	setString(&cfg.OllamaHost, fc.OllamaHost)
	setString(&cfg.AWSRegion, fc.AWSRegion)
	setString(&cfg.TopicFile, fc.TopicFile)
	setString(&cfg.QueueBackend, fc.QueueBackend)
	setString(&cfg.Subject, fc.Subject)
	setString(&cfg.Language, fc.Language)
	setString(&cfg.OutputDir, fc.OutputDir)
	setString(&cfg.SurrealDBURL, fc.SurrealDB.URL)
	setString(&cfg.SurrealDBNamespace, fc.SurrealDB.Namespace)
	setString(&cfg.SurrealDBDatabase, fc.SurrealDB.Database)
	setString(&cfg.SurrealDBAuthLevel, fc.SurrealDB.AuthLevel)
	setString(&cfg.LogFile, fc.Logging.File)

	if fc.Provider != "" {
		cfg.Provider = Provider(strings.ToLower(fc.Provider))
	}
	if models := cleanList(fc.Models); len(models) > 0 {
		cfg.Models = models
	}
	if fc.AttemptTimeout > 0 {
		cfg.AttemptTimeout = fc.AttemptTimeout
	}
	if fc.RetryBackoff > 0 {
		cfg.RetryBackoff = fc.RetryBackoff
	}
	if fc.SegmentPause > 0 {
		cfg.SegmentPause = fc.SegmentPause
	}
	if fc.Periods != 0 {
		cfg.Periods = clampPeriods(fc.Periods)
	}
	if fc.PeriodMinutes > 0 {
		cfg.PeriodMinutes = fc.PeriodMinutes
	}
	if fc.RecordHistory != nil {
		cfg.RecordHistory = *fc.RecordHistory
	}
	if fc.Logging.Level != "" {
		cfg.LogLevel = parseLogLevel(fc.Logging.Level)
	}
}

func applyEnv(cfg *Config) {
	// Credentials
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", cfg.GeminiAPIKey))
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)

	// Backends
	cfg.Provider = Provider(strings.ToLower(getEnv("LESSONPLAN_PROVIDER", string(cfg.Provider))))
	if models := cleanList(strings.Split(os.Getenv("LESSONPLAN_MODELS"), ",")); len(models) > 0 {
		cfg.Models = models
	}
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.AttemptTimeout = getDuration("LESSONPLAN_ATTEMPT_TIMEOUT", cfg.AttemptTimeout)
	cfg.RetryBackoff = getDuration("LESSONPLAN_RETRY_BACKOFF", cfg.RetryBackoff)
	cfg.SegmentPause = getDuration("LESSONPLAN_SEGMENT_PAUSE", cfg.SegmentPause)

	// Work intake
	cfg.Topic = strings.TrimSpace(getEnv("LESSONPLAN_TOPIC", cfg.Topic))
	cfg.TopicFile = getEnv("LESSONPLAN_TOPIC_FILE", cfg.TopicFile)
	if v, ok := os.LookupEnv("LESSONPLAN_PERIODS"); ok {
		cfg.Periods = ParsePeriods(v)
	}
	cfg.QueueBackend = strings.ToLower(getEnv("LESSONPLAN_QUEUE_BACKEND", cfg.QueueBackend))

	// Prompt
	cfg.Subject = getEnv("LESSONPLAN_SUBJECT", cfg.Subject)
	cfg.Language = getEnv("LESSONPLAN_LANGUAGE", cfg.Language)
	if n, err := strconv.Atoi(os.Getenv("LESSONPLAN_PERIOD_MINUTES")); err == nil && n > 0 {
		cfg.PeriodMinutes = n
	}

	// Output
	cfg.OutputDir = getEnv("LESSONPLAN_OUTPUT_DIR", cfg.OutputDir)

	// SurrealDB
	cfg.SurrealDBURL = getEnv("SURREALDB_URL", cfg.SurrealDBURL)
	cfg.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", cfg.SurrealDBNamespace)
	cfg.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", cfg.SurrealDBDatabase)
	cfg.SurrealDBUser = getEnv("SURREALDB_USER", cfg.SurrealDBUser)
	cfg.SurrealDBPass = getEnv("SURREALDB_PASS", cfg.SurrealDBPass)
	cfg.SurrealDBAuthLevel = getEnv("SURREALDB_AUTH_LEVEL", cfg.SurrealDBAuthLevel)
	if v := os.Getenv("LESSONPLAN_RECORD_HISTORY"); v != "" {
		cfg.RecordHistory = v == "true" || v == "1"
	}

	// Logging
	cfg.LogFile = getEnv("LESSONPLAN_LOG_FILE", cfg.LogFile)
	if v := os.Getenv("LESSONPLAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
}

// Validate checks the configuration for values the runner cannot work with.
func (c Config) Validate() error {
	var errs []error
	if len(c.Models) == 0 {
		errs = append(errs, errors.New("at least one model is required"))
	}
	if !c.Provider.Valid() {
		errs = append(errs, fmt.Errorf("unsupported provider: %s", c.Provider))
	}
	if c.QueueBackend != QueueFile && c.QueueBackend != QueueSurrealDB {
		errs = append(errs, fmt.Errorf("invalid queue backend: %s (valid: file, surrealdb)", c.QueueBackend))
	}
	if c.QueueBackend == QueueFile && c.TopicFile == "" {
		errs = append(errs, errors.New("topic file is required for the file queue backend"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.AttemptTimeout < 0 || c.RetryBackoff < 0 || c.SegmentPause < 0 {
		errs = append(errs, errors.New("durations must be non-negative"))
	}
	return errors.Join(errs...)
}

// ParsePeriods parses a period count. Absent, invalid or non-positive values
// yield 1.
func ParsePeriods(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 1
	}
	return clampPeriods(n)
}

func clampPeriods(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

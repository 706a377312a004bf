package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/raphaelgruber/lessonplan/internal/config"
	"github.com/raphaelgruber/lessonplan/internal/llm"
	"github.com/raphaelgruber/lessonplan/internal/metrics"
	"github.com/raphaelgruber/lessonplan/internal/models"
	"github.com/raphaelgruber/lessonplan/internal/service"
)

func TestPrinterIsPlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	assert.False(t, p.styled)

	p.report(service.RunReport{
		ID:     "abcd1234",
		Status: models.RunStatusPartial,
		Topic:  models.Topic{Text: "Redox", Source: models.SourceQueued},
		Result: models.JobResult{Segments: []models.SegmentResult{
			{Index: 1, Total: 2, Backend: "gemini-2.5-flash", Duration: 1500 * time.Millisecond},
			{Index: 2, Total: 2, Failed: true},
		}},
		ArtifactPath: "generated_plans/20260314_Redox.md",
		Restored:     true,
	})

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "no ANSI escapes when not a terminal")
	assert.Contains(t, out, "Run abcd1234: partial")
	assert.Contains(t, out, "Redox (queued)")
	assert.Contains(t, out, "Period 1/2: gemini-2.5-flash 1.5s")
	assert.Contains(t, out, "Period 2/2: failed")
	assert.Contains(t, out, "generated_plans/20260314_Redox.md")
	assert.Contains(t, out, "head of the queue")
}

func TestPrinterNoWork(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf).report(service.RunReport{Status: models.RunStatusNoWork})
	assert.Equal(t, "nothing to do (queue is empty)\n", buf.String())
}

func TestPrinterQueue(t *testing.T) {
	var buf bytes.Buffer
	topics := make([]string, 10)
	for i := range topics {
		topics[i] = "topic"
	}
	newPrinter(&buf).queue(topics)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 10)
	assert.Equal(t, " 1. topic", lines[0])
	assert.Equal(t, "10. topic", lines[9])
}

func TestPrinterStats(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf).stats(metrics.Snapshot{Backends: []metrics.BackendSnapshot{
		{Backend: "m1", Attempts: 2, Retryable: 2, AvgTimeMs: 10},
	}})
	assert.Contains(t, buf.String(), "attempts=2 ok=0 rate_limited=2 failed=0 avg=10ms")
}

func TestPrinterModels(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf).models([]llm.Backend{
		{Provider: config.ProviderGoogleAI, Model: "gemini-2.5-flash"},
		{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini"},
	})
	out := buf.String()
	assert.Contains(t, out, "* gemini-2.5-flash (googleai)")
	assert.Contains(t, out, "gemini-2.5-flash → gpt-4o-mini")
}

func TestPrinterRuns(t *testing.T) {
	var buf bytes.Buffer
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	newPrinter(&buf).runs([]models.RunRecord{
		{RunID: "abcd1234", Topic: "Redox", Status: models.RunStatusCompleted, Periods: 2, Succeeded: 2, StartedAt: started},
		{RunID: "ef567890", Topic: "原电池", Status: models.RunStatusPartial, Periods: 3, Succeeded: 1, StartedAt: started},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "abcd1234   completed  2/2      2026-03-14 09:30 Redox")
	assert.Contains(t, lines[2], "partial    1/3")
}

func TestPrinterRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf).runs(nil)
	assert.Equal(t, "no runs recorded\n", buf.String())
}

func TestPrinterRunDetail(t *testing.T) {
	var buf bytes.Buffer
	path := "generated_plans/20260314_Redox.md"
	msg := "period 2 of 2: all backends exhausted"
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	newPrinter(&buf).runDetail(models.RunRecord{
		RunID:        "abcd1234",
		Topic:        "Redox",
		Source:       "queued",
		Status:       models.RunStatusPartial,
		Periods:      2,
		Succeeded:    1,
		Backends:     []string{"gemini-2.5-flash"},
		ArtifactPath: &path,
		Restored:     true,
		Error:        &msg,
		StartedAt:    started,
		FinishedAt:   started.Add(90 * time.Second),
	})

	out := buf.String()
	assert.Contains(t, out, "Run abcd1234: partial")
	assert.Contains(t, out, "Redox (queued)")
	assert.Contains(t, out, "Periods:  1/2")
	assert.Contains(t, out, "Models:   gemini-2.5-flash")
	assert.Contains(t, out, "Duration: 1m30s")
	assert.Contains(t, out, path)
	assert.Contains(t, out, "returned to the queue")
	assert.Contains(t, out, msg)
}

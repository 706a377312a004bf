// Package artifact renders a job result as a Markdown lesson plan on disk.
package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphaelgruber/lessonplan/internal/fsutil"
	"github.com/raphaelgruber/lessonplan/internal/models"
)

// ErrNothingToWrite is returned for results without any successful segment.
var ErrNothingToWrite = errors.New("no successful segments to write")

// Writer persists job results under Dir.
type Writer struct {
	Dir string
	Now func() time.Time
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Now: time.Now}
}

// Write renders result and stores it atomically. It returns the file path.
// Partial results are written with their failed period marked.
func (w *Writer) Write(result models.JobResult) (string, error) {
	if result.Succeeded() == 0 {
		return "", ErrNothingToWrite
	}

	now := w.now()
	path := filepath.Join(w.Dir, models.Filename(now, result.Topic.Text))
	if err := fsutil.WriteAtomic(path, []byte(Render(result, now))); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Render formats result as Markdown.
func Render(result models.JobResult, generatedAt time.Time) string {
	b := &strings.Builder{}

	fmt.Fprintf(b, "# Topic: %s\n\n", result.Topic.Text)

	status := "complete"
	if !result.Completed {
		status = "partial"
	}
	fmt.Fprintf(b, "> model: %s | generated: %s | status: %s\n",
		backendSummary(result), generatedAt.Format("2006-01-02 15:04"), status)

	total := 1
	if len(result.Segments) > 0 {
		total = result.Segments[0].Total
	}

	for _, s := range result.Segments {
		b.WriteString("\n---\n\n")
		if total > 1 {
			fmt.Fprintf(b, "## Period %d of %d\n\n", s.Index, s.Total)
		}
		if s.Failed {
			fmt.Fprintf(b, "> **Generation failed for this period.** Remaining periods were not generated.\n")
			if s.Error != "" {
				fmt.Fprintf(b, ">\n> `%s`\n", firstLine(s.Error))
			}
			continue
		}
		b.WriteString(strings.TrimSpace(s.Content))
		b.WriteString("\n")
	}

	return b.String()
}

// backendSummary lists the backend used per period, collapsing repeats.
func backendSummary(result models.JobResult) string {
	backends := result.Backends()
	if len(backends) == 0 {
		return "none"
	}
	same := true
	for _, be := range backends[1:] {
		if be != backends[0] {
			same = false
			break
		}
	}
	if same {
		return backends[0]
	}
	return strings.Join(backends, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

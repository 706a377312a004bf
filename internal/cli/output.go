package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/raphaelgruber/lessonplan/internal/llm"
	"github.com/raphaelgruber/lessonplan/internal/metrics"
	"github.com/raphaelgruber/lessonplan/internal/models"
	"github.com/raphaelgruber/lessonplan/internal/service"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Warning: lipgloss.Color("#FFAF00"), // amber
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// printer writes human-readable output, styled only when w is a terminal.
type printer struct {
	w      io.Writer
	styled bool
	theme  Theme
}

func newPrinter(w io.Writer) *printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = isTerminal(f)
	}
	return &printer{w: w, styled: styled, theme: defaultTheme}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (p *printer) paint(c lipgloss.Color, bold bool, s string) string {
	if !p.styled {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Bold(bold).Render(s)
}

func (p *printer) hint(s string) string {
	if !p.styled {
		return s
	}
	return lipgloss.NewStyle().Foreground(p.theme.Hint).Italic(true).Render(s)
}

func (p *printer) statusLabel(s models.RunStatus) string {
	if s == models.RunStatusNoWork {
		return p.paint(p.theme.Status, false, "nothing to do")
	}
	return p.paintStatus(s, string(s))
}

func (p *printer) report(r service.RunReport) {
	if r.Status == models.RunStatusNoWork {
		fmt.Fprintf(p.w, "%s %s\n", p.statusLabel(r.Status), p.hint("(queue is empty)"))
		return
	}

	fmt.Fprintf(p.w, "Run %s: %s\n", r.ID, p.statusLabel(r.Status))
	if r.Topic.Text != "" {
		fmt.Fprintf(p.w, "  Topic:    %s %s\n", r.Topic.Text, p.hint("("+r.Topic.Source.String()+")"))
	}
	for _, s := range r.Result.Segments {
		label := fmt.Sprintf("  Period %d/%d:", s.Index, s.Total)
		if s.Failed {
			fmt.Fprintf(p.w, "%s %s\n", label, p.paint(p.theme.Error, false, "failed"))
			continue
		}
		fmt.Fprintf(p.w, "%s %s %s\n", label, s.Backend, p.hint(s.Duration.Round(time.Millisecond).String()))
	}
	if r.ArtifactPath != "" {
		fmt.Fprintf(p.w, "  Saved:    %s\n", r.ArtifactPath)
	}
	if r.Restored {
		fmt.Fprintf(p.w, "  %s\n", p.hint("topic returned to the head of the queue"))
	}
}

func (p *printer) stats(s metrics.Snapshot) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.paint(p.theme.Status, true, "Model attempts"))
	if len(s.Backends) == 0 {
		fmt.Fprintf(p.w, "  %s\n", p.hint("no attempts"))
		return
	}
	for _, b := range s.Backends {
		fmt.Fprintf(p.w, "  %-28s attempts=%d ok=%d rate_limited=%d failed=%d avg=%.0fms\n",
			b.Backend, b.Attempts, b.Successes, b.Retryable, b.Terminal, b.AvgTimeMs)
	}
}

func (p *printer) queue(topics []string) {
	if len(topics) == 0 {
		fmt.Fprintln(p.w, p.hint("queue is empty"))
		return
	}
	width := len(fmt.Sprint(len(topics)))
	for i, t := range topics {
		fmt.Fprintf(p.w, "%*d. %s\n", width, i+1, t)
	}
}

func (p *printer) models(backends []llm.Backend) {
	for i, b := range backends {
		marker := "  "
		if i == 0 {
			marker = p.paint(p.theme.Success, true, "* ")
		}
		fmt.Fprintf(p.w, "%s%s %s\n", marker, b.Model, p.hint("("+string(b.Provider)+")"))
	}
	if len(backends) > 1 {
		fmt.Fprintf(p.w, "%s\n", p.hint("fallback order: "+joinModels(backends)))
	}
}

func (p *printer) runs(runs []models.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(p.w, p.hint("no runs recorded"))
		return
	}

	fmt.Fprintf(p.w, "%-10s %-10s %-8s %-16s %s\n", "ID", "STATUS", "PERIODS", "STARTED", "TOPIC")
	for _, r := range runs {
		// pad before painting so ANSI codes do not break alignment
		status := fmt.Sprintf("%-10s", r.Status)
		fmt.Fprintf(p.w, "%-10s %s %-8s %-16s %s\n",
			r.RunID,
			p.paintStatus(r.Status, status),
			fmt.Sprintf("%d/%d", r.Succeeded, r.Periods),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Topic)
	}
}

func (p *printer) runDetail(r models.RunRecord) {
	fmt.Fprintf(p.w, "Run %s: %s\n", r.RunID, p.paintStatus(r.Status, string(r.Status)))
	fmt.Fprintf(p.w, "  Topic:    %s %s\n", r.Topic, p.hint("("+r.Source+")"))
	fmt.Fprintf(p.w, "  Periods:  %d/%d\n", r.Succeeded, r.Periods)
	if len(r.Backends) > 0 {
		fmt.Fprintf(p.w, "  Models:   %s\n", strings.Join(r.Backends, ", "))
	}
	fmt.Fprintf(p.w, "  Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(p.w, "  Duration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	if r.ArtifactPath != nil {
		fmt.Fprintf(p.w, "  Saved:    %s\n", *r.ArtifactPath)
	}
	if r.Restored {
		fmt.Fprintf(p.w, "  %s\n", p.hint("topic was returned to the queue"))
	}
	if r.Error != nil && *r.Error != "" {
		fmt.Fprintf(p.w, "  Error:    %s\n", p.paint(p.theme.Error, false, *r.Error))
	}
}

// paintStatus colors text by run status.
func (p *printer) paintStatus(s models.RunStatus, text string) string {
	switch s {
	case models.RunStatusCompleted:
		return p.paint(p.theme.Success, true, text)
	case models.RunStatusPartial:
		return p.paint(p.theme.Warning, true, text)
	case models.RunStatusFailed:
		return p.paint(p.theme.Error, true, text)
	default:
		return p.paint(p.theme.Status, false, text)
	}
}

func joinModels(backends []llm.Backend) string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Model
	}
	return strings.Join(names, " → ")
}

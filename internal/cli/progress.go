package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/lessonplan/internal/generate"
	"github.com/raphaelgruber/lessonplan/internal/models"
	"github.com/raphaelgruber/lessonplan/internal/service"
)

// segmentStartedMsg is sent when the planner begins a period.
type segmentStartedMsg struct {
	index, total int
}

// segmentFinishedMsg carries the outcome of one period.
type segmentFinishedMsg struct {
	result models.SegmentResult
}

// attemptMsg carries one backend attempt.
type attemptMsg struct {
	backend  string
	kind     generate.OutcomeKind
	duration time.Duration
}

// runDoneMsg ends the view.
type runDoneMsg struct {
	report service.RunReport
	err    error
}

// progressReporter forwards planner and driver callbacks as messages.
type progressReporter struct {
	send func(tea.Msg)
}

func (r progressReporter) SegmentStarted(index, total int) {
	r.send(segmentStartedMsg{index: index, total: total})
}

func (r progressReporter) SegmentFinished(result models.SegmentResult) {
	r.send(segmentFinishedMsg{result: result})
}

func (r progressReporter) RecordAttempt(backend string, kind generate.OutcomeKind, duration time.Duration) {
	r.send(attemptMsg{backend: backend, kind: kind, duration: duration})
}

// progressModel is the bubbletea model for a running job.
type progressModel struct {
	progress progress.Model
	theme    Theme
	cancel   context.CancelFunc

	period    int
	total     int
	succeeded int
	attempts  int
	last      *attemptMsg

	interrupted bool
	done        bool
}

// newProgressModel creates a model. cancel stops the run on ctrl+c or q.
func newProgressModel(cancel context.CancelFunc) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		progress: prog,
		theme:    defaultTheme,
		cancel:   cancel,
	}
}

// Init returns the initial command.
func (m progressModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Keep running until the runner has put the topic back.
			m.interrupt()
			return m, nil
		}

	case segmentStartedMsg:
		m.period, m.total = msg.index, msg.total
		m.attempts = 0
		m.last = nil

	case attemptMsg:
		m.attempts++
		m.last = &msg

	case segmentFinishedMsg:
		if !msg.result.Failed {
			m.succeeded++
		}

	case runDoneMsg:
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// interrupt cancels the run once.
func (m *progressModel) interrupt() {
	if m.interrupted {
		return
	}
	m.interrupted = true
	if m.cancel != nil {
		m.cancel()
	}
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string. It is empty once the run is done
// so the report printed afterwards stands alone.
func (m progressModel) renderContent() string {
	if m.done {
		return ""
	}
	if m.total == 0 {
		return m.style(m.theme.Hint).Italic(true).Render("Picking the next topic...") + "\n"
	}

	pct := float64(m.succeeded) / float64(m.total)

	var b strings.Builder
	status := m.style(m.theme.Status).Render(fmt.Sprintf("[period %d/%d]", m.period, m.total))
	fmt.Fprintf(&b, "%s %s %d/%d periods\n", status, m.progress.ViewAs(pct), m.succeeded, m.total)

	if m.last != nil {
		fmt.Fprintf(&b, "  %s: %s %s\n", m.last.backend, m.kindLabel(m.last.kind),
			m.style(m.theme.Hint).Render(fmt.Sprintf("(attempt %d, %s)", m.attempts, m.last.duration.Round(time.Millisecond))))
	}

	hint := "Press q to stop and return the topic to the queue"
	if m.interrupted {
		hint = "Stopping after the current attempt..."
	}
	b.WriteString(m.style(m.theme.Hint).Italic(true).Render(hint) + "\n")
	return b.String()
}

func (m progressModel) kindLabel(k generate.OutcomeKind) string {
	switch k {
	case generate.KindSuccess:
		return m.style(m.theme.Success).Bold(true).Render("ok")
	case generate.KindRetryable:
		return m.style(m.theme.Warning).Render("rate limited")
	default:
		return m.style(m.theme.Error).Render("failed")
	}
}

func (m progressModel) style(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// runWithProgress runs the job under an interactive progress view and
// returns the runner's report once both have finished.
func runWithProgress(ctx context.Context, runner *service.Runner, planner *generate.Planner, driver *generate.Driver, recorder generate.Recorder) (service.RunReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(cancel))
	reporter := progressReporter{send: p.Send}
	planner.SetObserver(reporter)
	driver.SetRecorder(generate.MultiRecorder{recorder, reporter})

	done := make(chan runDoneMsg, 1)
	go func() {
		report, err := runner.Run(ctx)
		msg := runDoneMsg{report: report, err: err}
		done <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		// The job keeps going without the view.
		logger.Warn("progress view stopped", "error", err)
	}

	msg := <-done
	return msg.report, msg.err
}

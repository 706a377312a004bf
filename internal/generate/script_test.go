package generate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raphaelgruber/lessonplan/internal/models"
)

// scriptedAttempter replays a fixed sequence of outcomes per backend.
// A backend with no scripted outcomes left fails terminally.
type scriptedAttempter struct {
	mu     sync.Mutex
	script map[string][]Outcome
	calls  []call
	onCall func(backend string)
}

type call struct {
	Backend string
	Req     Request
}

func newScript(script map[string][]Outcome) *scriptedAttempter {
	copied := make(map[string][]Outcome, len(script))
	for k, v := range script {
		copied[k] = append([]Outcome(nil), v...)
	}
	return &scriptedAttempter{script: copied}
}

func (s *scriptedAttempter) Attempt(ctx context.Context, backend string, req Request) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{Backend: backend, Req: req})
	if s.onCall != nil {
		s.onCall(backend)
	}
	queue := s.script[backend]
	if len(queue) == 0 {
		return Terminal(fmt.Errorf("%s: unscripted call", backend))
	}
	out := queue[0]
	s.script[backend] = queue[1:]
	return out
}

func (s *scriptedAttempter) callsTo(backend string) int {
	n := 0
	for _, c := range s.calls {
		if c.Backend == backend {
			n++
		}
	}
	return n
}

func (s *scriptedAttempter) order() []string {
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Backend)
	}
	return out
}

// recordingSleeper records requested waits without blocking.
type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

type recordedAttempt struct {
	Backend string
	Kind    OutcomeKind
}

type fakeRecorder struct {
	attempts []recordedAttempt
}

func (f *fakeRecorder) RecordAttempt(backend string, kind OutcomeKind, duration time.Duration) {
	f.attempts = append(f.attempts, recordedAttempt{Backend: backend, Kind: kind})
}

var (
	errRate  = errors.New("429 too many requests")
	errModel = errors.New("404 model not found")
)

// fakeObserver records planner notifications as short event strings.
type fakeObserver struct {
	events []string
}

func (f *fakeObserver) SegmentStarted(index, total int) {
	f.events = append(f.events, fmt.Sprintf("start %d/%d", index, total))
}

func (f *fakeObserver) SegmentFinished(r models.SegmentResult) {
	state := "ok " + r.Backend
	if r.Failed {
		state = "failed"
	}
	f.events = append(f.events, fmt.Sprintf("done %d/%d %s", r.Index, r.Total, state))
}

package models

import (
	"strings"
	"time"
)

// SegmentResult is the outcome of generating one period of a lesson plan.
type SegmentResult struct {
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	Content  string        `json:"content,omitempty"`
	Backend  string        `json:"backend,omitempty"`
	Failed   bool          `json:"failed"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// JobResult accumulates segment results for one topic.
// Completed is false as soon as any segment fails; earlier segments are kept.
type JobResult struct {
	Topic      Topic           `json:"topic"`
	Segments   []SegmentResult `json:"segments"`
	Completed  bool            `json:"completed"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Succeeded returns the number of segments that produced content.
func (r JobResult) Succeeded() int {
	n := 0
	for _, s := range r.Segments {
		if !s.Failed {
			n++
		}
	}
	return n
}

// Backends returns the backend used for each successful segment, in order.
func (r JobResult) Backends() []string {
	backends := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		if !s.Failed {
			backends = append(backends, s.Backend)
		}
	}
	return backends
}

// Content concatenates the content of all successful segments in index order.
func (r JobResult) Content() string {
	parts := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		if !s.Failed {
			parts = append(parts, strings.TrimSpace(s.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Failure returns the failed segment, if any.
func (r JobResult) Failure() (SegmentResult, bool) {
	for _, s := range r.Segments {
		if s.Failed {
			return s, true
		}
	}
	return SegmentResult{}, false
}

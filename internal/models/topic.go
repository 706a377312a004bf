// Package models defines data structures shared by the lessonplan runner.
package models

// TopicSource records where a topic came from.
type TopicSource int

const (
	// SourceManual is a topic supplied on the command line or environment.
	// It is never persisted and never restored.
	SourceManual TopicSource = iota
	// SourceQueued is a topic popped from the persisted queue.
	SourceQueued
)

// String returns the source name used in logs and run history.
func (s TopicSource) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceQueued:
		return "queued"
	default:
		return "unknown"
	}
}

// Topic is one unit of work. Its identity is its text.
type Topic struct {
	Text   string
	Source TopicSource
}

// Persisted reports whether the topic was consumed from the queue and must be
// restored if the run fails.
func (t Topic) Persisted() bool {
	return t.Source == SourceQueued
}

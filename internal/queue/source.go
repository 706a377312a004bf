package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/lessonplan/internal/models"
)

// Source yields the next topic to work on.
type Source interface {
	// Next returns the next topic. ok is false when there is nothing to do,
	// which is not an error.
	Next(ctx context.Context) (topic models.Topic, ok bool, err error)
	// Restore puts a consumed queued topic back at the head of the queue.
	// It must be called at most once per failed run.
	Restore(ctx context.Context, topic models.Topic) error
}

// ManualSource yields a single externally supplied topic and never touches a store.
type ManualSource struct {
	text     string
	consumed bool
}

// NewManualSource creates a source for one ad-hoc topic.
func NewManualSource(text string) *ManualSource {
	return &ManualSource{text: strings.TrimSpace(text)}
}

// Next returns the manual topic once.
func (s *ManualSource) Next(ctx context.Context) (models.Topic, bool, error) {
	if s.consumed || s.text == "" {
		return models.Topic{}, false, nil
	}
	s.consumed = true
	return models.Topic{Text: s.text, Source: models.SourceManual}, true, nil
}

// Restore is a no-op: manual topics are never persisted.
func (s *ManualSource) Restore(ctx context.Context, topic models.Topic) error {
	return nil
}

// QueueSource pops topics from the head of a persisted queue.
type QueueSource struct {
	store  Store
	logger *slog.Logger
}

// NewQueueSource creates a source over store.
func NewQueueSource(store Store, logger *slog.Logger) *QueueSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueSource{store: store, logger: logger}
}

// Next pops the head and immediately commits the remainder, so the popped
// topic is in flight until the caller completes or restores it.
func (s *QueueSource) Next(ctx context.Context) (models.Topic, bool, error) {
	topics, err := s.store.Load(ctx)
	if err != nil {
		return models.Topic{}, false, fmt.Errorf("load queue: %w", err)
	}
	if len(topics) == 0 {
		s.logger.Info("topic queue is empty")
		return models.Topic{}, false, nil
	}

	head, rest := topics[0], topics[1:]
	if err := s.store.Save(ctx, rest); err != nil {
		return models.Topic{}, false, fmt.Errorf("commit queue: %w", err)
	}

	s.logger.Info("dequeued topic", "topic", head, "remaining", len(rest))
	return models.Topic{Text: head, Source: models.SourceQueued}, true, nil
}

// Restore prepends topic to the queue. Manual topics are ignored.
func (s *QueueSource) Restore(ctx context.Context, topic models.Topic) error {
	if !topic.Persisted() {
		return nil
	}
	topics, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}
	restored := make([]string, 0, len(topics)+1)
	restored = append(restored, topic.Text)
	restored = append(restored, topics...)
	if err := s.store.Save(ctx, restored); err != nil {
		return fmt.Errorf("restore topic: %w", err)
	}
	s.logger.Info("restored topic to queue head", "topic", topic.Text, "pending", len(restored))
	return nil
}

// Append adds topics to the tail of the queue, one entry per non-blank line.
// It returns the new queue length.
func Append(ctx context.Context, store Store, topics ...string) (int, error) {
	current, err := store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load queue: %w", err)
	}
	for _, t := range topics {
		current = append(current, parseLines([]byte(t))...)
	}
	if err := store.Save(ctx, current); err != nil {
		return 0, fmt.Errorf("save queue: %w", err)
	}
	return len(current), nil
}

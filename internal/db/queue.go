package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/raphaelgruber/lessonplan/internal/queue"
)

type queueRecord struct {
	Items []string `json:"items"`
}

// QueueStore keeps the topic queue in the record topic_queue:pending.
// A missing record loads as an empty queue.
type QueueStore struct {
	client *Client
}

// Compile-time check that QueueStore implements queue.Store.
var _ queue.Store = (*QueueStore)(nil)

// NewQueueStore creates a queue store on client.
func NewQueueStore(client *Client) *QueueStore {
	return &QueueStore{client: client}
}

// Load returns the pending topics in order, with blank entries removed.
func (s *QueueStore) Load(ctx context.Context) ([]string, error) {
	results, err := surrealdb.Query[[]queueRecord](ctx, s.client.db, `
		SELECT items FROM topic_queue:pending
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", wrapQueryError(err))
	}

	topics := []string{}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return topics, nil
	}
	for _, item := range (*results)[0].Result[0].Items {
		if item = strings.TrimSpace(item); item != "" {
			topics = append(topics, item)
		}
	}
	return topics, nil
}

// Save replaces the pending topics in one statement.
func (s *QueueStore) Save(ctx context.Context, topics []string) error {
	if topics == nil {
		topics = []string{}
	}
	_, err := surrealdb.Query[any](ctx, s.client.db, `
		UPSERT topic_queue:pending SET
			items = $items,
			updated = time::now()
	`, map[string]any{"items": topics})
	if err != nil {
		return fmt.Errorf("save queue: %w", wrapQueryError(err))
	}
	return nil
}

// Package queue provides the topic work source: a one-shot manual topic or the
// head of a persisted, ordered topic queue.
package queue

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/raphaelgruber/lessonplan/internal/fsutil"
)

// Store persists the ordered list of pending topics.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, topics []string) error
}

// FileStore keeps the queue in a newline-separated text file.
// A missing file loads as an empty queue.
type FileStore struct {
	path string
}

// Compile-time check that FileStore implements Store.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads all non-blank lines, trimmed, in file order.
func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read queue %s: %w", s.path, err)
	}
	return parseLines(data), nil
}

// Save replaces the file contents atomically (temp file + rename).
func (s *FileStore) Save(ctx context.Context, topics []string) error {
	data := []byte(strings.Join(topics, "\n"))
	if len(topics) > 0 {
		data = append(data, '\n')
	}
	return fsutil.WriteAtomic(s.path, data)
}

func parseLines(data []byte) []string {
	topics := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		topics = append(topics, line)
	}
	return topics
}

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu     sync.Mutex
	topics []string
	saves  int
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store preloaded with topics.
func NewMemoryStore(topics ...string) *MemoryStore {
	return &MemoryStore{topics: append([]string(nil), topics...)}
}

// Load returns a copy of the stored topics with blank entries removed.
func (s *MemoryStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.topics))
	for _, t := range s.topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// Save replaces the stored topics.
func (s *MemoryStore) Save(ctx context.Context, topics []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append([]string(nil), topics...)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

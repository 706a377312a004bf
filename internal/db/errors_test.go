package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/surrealdb/surrealdb.go"
)

func TestWrapQueryError(t *testing.T) {
	plain := errors.New("connection closed")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"already exists", &surrealdb.QueryError{Message: "Database record `generation_run:x` already exists"}, ErrAlreadyExists},
		{"unique index", &surrealdb.QueryError{Message: "Database index `generation_run_id` already contains 'abc'"}, ErrAlreadyExists},
		{"conflict", fmt.Errorf("query: %w", &surrealdb.QueryError{Message: "Transaction conflict: resource busy"}), ErrTransactionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapQueryError(tt.err)
			if !errors.Is(got, tt.target) {
				t.Errorf("wrapQueryError(%v) = %v, want %v", tt.err, got, tt.target)
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		if wrapQueryError(nil) != nil {
			t.Error("expected nil")
		}
	})

	t.Run("unknown error passes through", func(t *testing.T) {
		if got := wrapQueryError(plain); got != plain {
			t.Errorf("expected original error, got %v", got)
		}
	})
}

package generate

import (
	"context"
	"errors"
)

// OutcomeKind classifies a single call attempt.
type OutcomeKind int

const (
	// KindSuccess carries generated content.
	KindSuccess OutcomeKind = iota
	// KindRetryable means the backend is rate limiting the caller.
	KindRetryable
	// KindTerminal is any other failure; the backend is skipped.
	KindTerminal
)

// String returns the kind name used in logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRetryable:
		return "retryable"
	case KindTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Outcome is the result of asking one backend to generate once.
type Outcome struct {
	Kind    OutcomeKind
	Content string
	Err     error
}

// Success builds a successful outcome.
func Success(content string) Outcome {
	return Outcome{Kind: KindSuccess, Content: content}
}

// Retryable builds a rate-limited outcome.
func Retryable(err error) Outcome {
	if err == nil {
		err = errors.New("rate limited")
	}
	return Outcome{Kind: KindRetryable, Err: err}
}

// Terminal builds a non-retryable failure outcome.
func Terminal(err error) Outcome {
	if err == nil {
		err = errors.New("backend failed")
	}
	return Outcome{Kind: KindTerminal, Err: err}
}

// Request describes what to generate in one attempt.
// Segment and Total are 1-based; Total == 1 means an unsegmented job.
type Request struct {
	Topic   string
	Segment int
	Total   int
}

// Attempter asks one backend to perform one generation.
// Implementations own transport details and timeouts; a timeout surfaces as
// a Terminal outcome.
type Attempter interface {
	Attempt(ctx context.Context, backend string, req Request) Outcome
}

// AttempterFunc adapts a function to the Attempter interface.
type AttempterFunc func(ctx context.Context, backend string, req Request) Outcome

// Attempt calls f.
func (f AttempterFunc) Attempt(ctx context.Context, backend string, req Request) Outcome {
	return f(ctx, backend, req)
}

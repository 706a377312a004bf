package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/raphaelgruber/lessonplan/internal/generate"
)

var (
	// ErrRateLimited marks a provider response that asks the caller to slow down.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyResponse is returned when a provider answers without content.
	ErrEmptyResponse = errors.New("empty response")
)

// rateLimitPatterns are matched case-insensitively against provider errors
// that langchaingo passes through as plain strings. A bare "429" is not
// matched since request ids and model names may contain those digits.
var rateLimitPatterns = []string{
	"error 429",
	"status 429",
	"status code 429",
	"status: 429",
	"code: 429",
	"code 429",
	"429 too many",
	"rate limit",
	"ratelimit",
	"rate_limit",
	"resource_exhausted",
	"resource exhausted",
	"too many requests",
	"throttl",
}

// IsRateLimited reports whether err indicates provider-side throttling.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if llms.IsRateLimitError(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Classify maps a provider error to an attempt outcome: throttling is
// retryable, everything else is terminal for that backend.
func Classify(err error) generate.Outcome {
	if IsRateLimited(err) {
		if errors.Is(err, ErrRateLimited) {
			return generate.Retryable(err)
		}
		return generate.Retryable(fmt.Errorf("%w: %w", ErrRateLimited, err))
	}
	return generate.Terminal(err)
}

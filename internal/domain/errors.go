package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or oversized query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnknownVersion signals a corpus version that is not configured.
	ErrUnknownVersion = errors.New("unknown corpus version")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrTokenBudgetExceeded signals that a provider token budget is spent
	// and the budget action is reject.
	ErrTokenBudgetExceeded = errors.New("token budget exceeded")
	// ErrComparisonPartialFailure signals that one branch of a cross-version
	// comparison failed. A one-sided comparison is never returned.
	ErrComparisonPartialFailure = errors.New("comparison partial failure")
)

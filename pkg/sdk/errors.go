package lexroute

import "github.com/kailas-cloud/lexroute/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery             = domain.ErrInvalidQuery
	ErrUnknownVersion           = domain.ErrUnknownVersion
	ErrComparisonPartialFailure = domain.ErrComparisonPartialFailure
	ErrTokenBudgetExceeded      = domain.ErrTokenBudgetExceeded
	ErrEmbeddingProviderError   = domain.ErrEmbeddingProviderError
	ErrCompletionProviderError  = domain.ErrCompletionProviderError
)

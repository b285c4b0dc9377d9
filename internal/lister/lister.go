package lister

import (
	"context"

	"github.com/kurihiro0119/github-repo-chat/internal/domain"
)

// Lister fetches repository summaries from GitHub
type Lister interface {
	// ListRepositories lists the repositories of account, or of the
	// authenticated user when account is empty. The result keeps the API's
	// order. Errors are *errors.AppError with an authentication, network or
	// remote code; no partial result is returned alongside an error.
	ListRepositories(ctx context.Context, token, account string) ([]domain.RepositorySummary, error)
}

// RateLimitReporter exposes the rate limit seen on the most recent response
type RateLimitReporter interface {
	RateLimit() RateStatus
}

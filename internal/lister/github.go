package lister

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-repo-chat/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-chat/internal/errors"
)

const (
	defaultPerPage = 100
	defaultTimeout = 30 * time.Second
)

// Options configures a GitHubLister
type Options struct {
	// BaseURL overrides https://api.github.com/ (GitHub Enterprise, tests)
	BaseURL string
	// PerPage is the page size requested from GitHub, at most 100
	PerPage int
	// MaxPages caps how many pages are read per call. 1 keeps the
	// single-page limit of roughly 100 repositories per account.
	MaxPages int
	// Timeout bounds each HTTP request
	Timeout time.Duration
	Logger  *logrus.Logger
}

// GitHubLister implements Lister using the GitHub REST API
type GitHubLister struct {
	baseURL  *url.URL
	perPage  int
	maxPages int
	timeout  time.Duration
	log      *logrus.Logger
	rate     rateTracker
}

// NewGitHubLister creates a new GitHub lister
func NewGitHubLister(opts Options) (*GitHubLister, error) {
	l := &GitHubLister{
		perPage:  opts.PerPage,
		maxPages: opts.MaxPages,
		timeout:  opts.Timeout,
		log:      opts.Logger,
	}
	if l.perPage <= 0 || l.perPage > 100 {
		l.perPage = defaultPerPage
	}
	if l.maxPages <= 0 {
		l.maxPages = 1
	}
	if l.timeout <= 0 {
		l.timeout = defaultTimeout
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}

	if opts.BaseURL != "" {
		// go-github resolves endpoints relative to BaseURL, which needs a trailing slash
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
		}
		l.baseURL = u
	}

	return l, nil
}

// newClient builds a GitHub client that sends token as a bearer credential
func (l *GitHubLister) newClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = l.timeout

	client := github.NewClient(tc)
	if l.baseURL != nil {
		client.BaseURL = l.baseURL
	}
	return client
}

// ListRepositories lists up to MaxPages pages of repositories
func (l *GitHubLister) ListRepositories(ctx context.Context, token, account string) ([]domain.RepositorySummary, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewAuthenticationError("GitHub token is required", 0, nil)
	}
	account = strings.TrimSpace(account)

	entry := l.log.WithField("account", accountLabel(account))
	entry.Debug("listing repositories")

	client := l.newClient(ctx, token)
	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: l.perPage},
	}

	summaries := make([]domain.RepositorySummary, 0, l.perPage)
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		// An empty user selects GET /user/repos
		repos, resp, err := client.Repositories.List(ctx, account, opts)
		// Error responses carry rate headers too, rate-limit 403s above all
		l.updateRateLimitFromResponse(resp)
		if err != nil {
			classified := classifyError(err, resp)
			entry.WithError(classified).Warn("failed to list repositories")
			return nil, classified
		}

		for _, repo := range repos {
			summary := toSummary(repo)
			if _, dup := seen[summary.FullName]; dup {
				// a repository moved across a page boundary between requests
				continue
			}
			seen[summary.FullName] = struct{}{}
			summaries = append(summaries, summary)
		}

		if resp.NextPage == 0 {
			break
		}
		if page >= l.maxPages {
			entry.WithFields(logrus.Fields{
				"pages":     page,
				"per_page":  l.perPage,
				"collected": len(summaries),
			}).Warn("repository list truncated at page limit")
			break
		}
		opts.Page = resp.NextPage
	}

	entry.WithField("count", len(summaries)).Info("listed repositories")
	return summaries, nil
}

// RateLimit returns the rate limit reported by the most recent response
func (l *GitHubLister) RateLimit() RateStatus {
	return l.rate.Snapshot()
}

// updateRateLimitFromResponse updates the rate tracker from API response
func (l *GitHubLister) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil {
		l.rate.Update(resp.Rate.Limit, resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

// toSummary maps a GitHub repository field by field
func toSummary(repo *github.Repository) domain.RepositorySummary {
	summary := domain.RepositorySummary{
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.Description,
		StarCount:   repo.GetStargazersCount(),
		URL:         repo.GetHTMLURL(),
		IsPrivate:   repo.GetPrivate(),
		ForksCount:  repo.GetForksCount(),
	}
	if lang := repo.GetLanguage(); lang != "" {
		summary.PrimaryLanguage = &lang
	}
	if repo.UpdatedAt != nil {
		t := repo.UpdatedAt.Time
		summary.UpdatedAt = &t
	}
	return summary
}

// classifyError maps a go-github error onto the authentication / network /
// remote taxonomy
func classifyError(err error, resp *github.Response) error {
	// Rate limiting is reported as 403 but is not a credential problem
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRemoteError(statusOf(rateErr.Response, http.StatusForbidden), messageOr(rateErr.Message, "API rate limit exceeded"), err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return apperrors.NewRemoteError(statusOf(abuseErr.Response, http.StatusForbidden), messageOr(abuseErr.Message, "secondary rate limit exceeded"), err)
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		status := statusOf(errResp.Response, 0)
		return statusError(status, messageOr(errResp.Message, http.StatusText(status)), err)
	}

	// The request completed but the body could not be used
	if resp != nil && resp.Response != nil {
		return statusError(resp.StatusCode, err.Error(), err)
	}

	return apperrors.NewNetworkError(err)
}

func statusError(status int, message string, err error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewAuthenticationError(message, status, err)
	default:
		return apperrors.NewRemoteError(status, message, err)
	}
}

func statusOf(resp *http.Response, fallback int) int {
	if resp == nil {
		return fallback
	}
	return resp.StatusCode
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

func accountLabel(account string) string {
	if account == "" {
		return "(authenticated user)"
	}
	return account
}

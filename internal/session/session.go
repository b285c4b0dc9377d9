package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kurihiro0119/github-repo-chat/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-chat/internal/errors"
	"github.com/kurihiro0119/github-repo-chat/internal/lister"
)

// FlashKind distinguishes success and error notices shown once on the page
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// TokenSource names where the token used for the next load comes from
type TokenSource string

const (
	TokenSourceNone        TokenSource = ""
	TokenSourceTyped       TokenSource = "typed"
	TokenSourceEnvironment TokenSource = "environment"
)

// Flash is a one-shot notice for the next rendered page
type Flash struct {
	Kind    FlashKind
	Message string
}

// Session holds the state of one browser session. Nothing is shared
// between sessions and nothing outlives the process.
type Session struct {
	ID string

	defaultToken string
	now          func() time.Time

	// loadMu serializes fetches so one session never runs two at once
	loadMu sync.Mutex

	// lastSeen is guarded by the owning Store's mutex
	lastSeen time.Time

	mu sync.RWMutex
	// typedToken is the last non-blank token entered in the interface.
	// It is never rendered or logged.
	typedToken   string
	account      string
	repositories []domain.RepositorySummary
	selected     string
	transcript   []domain.ChatMessage
	flash        *Flash
}

// Snapshot is a copy of the session state for rendering
type Snapshot struct {
	ID           string
	HasToken     bool
	TokenSource  TokenSource
	Account      string
	Repositories []domain.RepositorySummary
	Selected     *domain.RepositorySummary
	Transcript   []domain.ChatMessage
}

func newSession(id, defaultToken string) *Session {
	return &Session{
		ID:           id,
		defaultToken: defaultToken,
		now:          time.Now,
	}
}

// ResolveToken returns the interface value when present, otherwise the
// token typed earlier in this session, otherwise the token from the
// environment
func (s *Session) ResolveToken(input string) string {
	if token := strings.TrimSpace(input); token != "" {
		return token
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.typedToken != "" {
		return s.typedToken
	}
	return s.defaultToken
}

func (s *Session) tokenSourceLocked() TokenSource {
	switch {
	case s.typedToken != "":
		return TokenSourceTyped
	case s.defaultToken != "":
		return TokenSourceEnvironment
	default:
		return TokenSourceNone
	}
}

// Load fetches repositories through l and replaces the session's list.
// On failure the previous list stays in place and the error is returned.
func (s *Session) Load(ctx context.Context, l lister.Lister, tokenInput, account string) ([]domain.RepositorySummary, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	account = strings.TrimSpace(account)
	token := s.ResolveToken(tokenInput)

	s.mu.Lock()
	if typed := strings.TrimSpace(tokenInput); typed != "" {
		s.typedToken = typed
	}
	s.account = account
	s.mu.Unlock()

	repos, err := l.ListRepositories(ctx, token, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load repositories: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.repositories = repos
	if _, ok := domain.FindByFullName(repos, s.selected); !ok {
		next := ""
		if len(repos) > 0 {
			next = repos[0].FullName
		}
		s.changeSelectionLocked(next)
	}

	return cloneRepos(repos), nil
}

// Repositories returns a copy of the current list
func (s *Session) Repositories() []domain.RepositorySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRepos(s.repositories)
}

// Repository returns one repository of the current list
func (s *Session) Repository(fullName string) (domain.RepositorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repo, ok := domain.FindByFullName(s.repositories, fullName)
	if !ok {
		return domain.RepositorySummary{}, apperrors.NewNotFoundError("repository " + fullName)
	}
	return repo, nil
}

// Select makes fullName the selected repository. Selecting a different
// repository starts a new chat transcript.
func (s *Session) Select(fullName string) (domain.RepositorySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := domain.FindByFullName(s.repositories, fullName)
	if !ok {
		return domain.RepositorySummary{}, apperrors.NewNotFoundError("repository " + fullName)
	}
	s.changeSelectionLocked(fullName)
	return repo, nil
}

func (s *Session) changeSelectionLocked(fullName string) {
	if s.selected != fullName {
		s.transcript = nil
	}
	s.selected = fullName
}

// Selected returns the selected repository, if any
func (s *Session) Selected() (domain.RepositorySummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FindByFullName(s.repositories, s.selected)
}

// SendChat appends the user's message and the fixed placeholder reply.
// It returns the updated transcript.
func (s *Session) SendChat(text string) ([]domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewBadRequestError("message must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := domain.FindByFullName(s.repositories, s.selected); !ok {
		return nil, apperrors.NewBadRequestError("please select a repository first")
	}

	now := s.now()
	s.transcript = append(s.transcript,
		domain.ChatMessage{Role: domain.ChatRoleUser, Content: text, Timestamp: now},
		domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: domain.PlaceholderReply, Timestamp: now},
	)
	return cloneMessages(s.transcript), nil
}

// Transcript returns a copy of the chat transcript
func (s *Session) Transcript() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.transcript)
}

// ClearChat empties the chat transcript
func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

// SetFlash stores a notice for the next rendered page
func (s *Session) SetFlash(kind FlashKind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = &Flash{Kind: kind, Message: message}
}

// TakeFlash returns and clears the pending notice
func (s *Session) TakeFlash() *Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flash
	s.flash = nil
	return f
}

// Snapshot copies the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ID:           s.ID,
		HasToken:     s.typedToken != "" || s.defaultToken != "",
		TokenSource:  s.tokenSourceLocked(),
		Account:      s.account,
		Repositories: cloneRepos(s.repositories),
		Transcript:   cloneMessages(s.transcript),
	}
	if repo, ok := domain.FindByFullName(s.repositories, s.selected); ok {
		snap.Selected = &repo
	}
	return snap
}

func cloneRepos(repos []domain.RepositorySummary) []domain.RepositorySummary {
	out := make([]domain.RepositorySummary, len(repos))
	copy(out, repos)
	return out
}

func cloneMessages(msgs []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

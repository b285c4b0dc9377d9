package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-repo-chat/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-chat/internal/errors"
)

type mockLister struct {
	repos []domain.RepositorySummary
	err   error

	calls       int
	lastToken   string
	lastAccount string
}

func (m *mockLister) ListRepositories(ctx context.Context, token, account string) ([]domain.RepositorySummary, error) {
	m.calls++
	m.lastToken = token
	m.lastAccount = account
	if m.err != nil {
		return nil, m.err
	}
	return m.repos, nil
}

func repo(fullName string, stars int) domain.RepositorySummary {
	return domain.RepositorySummary{Name: fullName, FullName: fullName, StarCount: stars}
}

func TestResolveToken(t *testing.T) {
	s := NewStore("env-token").Create()

	assert.Equal(t, "typed", s.ResolveToken("  typed "))
	assert.Equal(t, "env-token", s.ResolveToken(""))
	assert.Equal(t, "env-token", s.ResolveToken("   "))

	noDefault := NewStore("").Create()
	assert.Equal(t, "", noDefault.ResolveToken(""))
}

func TestLoad_TypedTokenIsRemembered(t *testing.T) {
	s := NewStore("env-token").Create()
	l := &mockLister{repos: []domain.RepositorySummary{repo("octocat/a", 1)}}

	assert.Equal(t, TokenSourceEnvironment, s.Snapshot().TokenSource)

	_, err := s.Load(context.Background(), l, " typed ", "")
	require.NoError(t, err)
	assert.Equal(t, "typed", l.lastToken)
	assert.Equal(t, TokenSourceTyped, s.Snapshot().TokenSource)

	// a blank field keeps using the typed token, not the environment
	_, err = s.Load(context.Background(), l, "", "octocat")
	require.NoError(t, err)
	assert.Equal(t, "typed", l.lastToken)
	assert.Equal(t, "typed", s.ResolveToken(""))

	// a new value replaces it
	_, err = s.Load(context.Background(), l, "other", "")
	require.NoError(t, err)
	assert.Equal(t, "other", l.lastToken)
	assert.Equal(t, "other", s.ResolveToken(""))
}

func TestSnapshot_TokenSource(t *testing.T) {
	s := NewStore("").Create()
	snap := s.Snapshot()
	assert.False(t, snap.HasToken)
	assert.Equal(t, TokenSourceNone, snap.TokenSource)

	l := &mockLister{err: apperrors.NewAuthenticationError("Bad credentials", 401, nil)}
	_, err := s.Load(context.Background(), l, "typed", "")
	require.Error(t, err)

	snap = s.Snapshot()
	assert.True(t, snap.HasToken)
	assert.Equal(t, TokenSourceTyped, snap.TokenSource)
}

func TestLoad_ReplacesListAndSelectsFirst(t *testing.T) {
	s := NewStore("env-token").Create()
	l := &mockLister{repos: []domain.RepositorySummary{repo("octocat/a", 3), repo("octocat/b", 0)}}

	got, err := s.Load(context.Background(), l, "", " octocat ")
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, "env-token", l.lastToken)
	assert.Equal(t, "octocat", l.lastAccount)

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "octocat/a", selected.FullName)

	// second load replaces rather than merges
	l.repos = []domain.RepositorySummary{repo("octocat/c", 1)}
	_, err = s.Load(context.Background(), l, "typed", "")
	require.NoError(t, err)

	assert.Equal(t, "typed", l.lastToken)
	repos := s.Repositories()
	require.Len(t, repos, 1)
	assert.Equal(t, "octocat/c", repos[0].FullName)

	selected, ok = s.Selected()
	require.True(t, ok)
	assert.Equal(t, "octocat/c", selected.FullName)
}

func TestLoad_KeepsSelectionStillPresent(t *testing.T) {
	s := NewStore("t").Create()
	l := &mockLister{repos: []domain.RepositorySummary{repo("octocat/a", 0), repo("octocat/b", 0)}}

	_, err := s.Load(context.Background(), l, "", "")
	require.NoError(t, err)
	_, err = s.Select("octocat/b")
	require.NoError(t, err)
	_, err = s.SendChat("hi")
	require.NoError(t, err)

	_, err = s.Load(context.Background(), l, "", "")
	require.NoError(t, err)

	selected, _ := s.Selected()
	assert.Equal(t, "octocat/b", selected.FullName)
	assert.Len(t, s.Transcript(), 2, "reloading the same selection keeps the transcript")
}

func TestLoad_FailureKeepsPreviousList(t *testing.T) {
	s := NewStore("t").Create()
	l := &mockLister{repos: []domain.RepositorySummary{repo("octocat/a", 0)}}

	_, err := s.Load(context.Background(), l, "", "")
	require.NoError(t, err)

	l.err = apperrors.NewAuthenticationError("Bad credentials", 401, nil)
	got, err := s.Load(context.Background(), l, "bad", "")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperrors.IsAuthentication(err))

	repos := s.Repositories()
	require.Len(t, repos, 1)
	assert.Equal(t, "octocat/a", repos[0].FullName)
}

func TestSelect(t *testing.T) {
	s := NewStore("t").Create()
	_, err := s.Load(context.Background(), &mockLister{repos: []domain.RepositorySummary{repo("octocat/a", 0), repo("octocat/b", 5)}}, "", "")
	require.NoError(t, err)

	_, err = s.SendChat("question about a")
	require.NoError(t, err)

	picked, err := s.Select("octocat/b")
	require.NoError(t, err)
	assert.Equal(t, 5, picked.StarCount)
	assert.Empty(t, s.Transcript(), "changing repository starts a new transcript")

	_, err = s.Select("octocat/missing")
	assert.True(t, apperrors.IsNotFound(err))

	selected, _ := s.Selected()
	assert.Equal(t, "octocat/b", selected.FullName)
}

func TestSendChat(t *testing.T) {
	s := NewStore("t").Create()
	fixed := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	_, err := s.SendChat("hello")
	assert.True(t, apperrors.IsBadRequest(err), "chat requires a selected repository")

	_, err = s.Load(context.Background(), &mockLister{repos: []domain.RepositorySummary{repo("octocat/a", 0)}}, "", "")
	require.NoError(t, err)

	_, err = s.SendChat("   ")
	assert.True(t, apperrors.IsBadRequest(err))

	transcript, err := s.SendChat(" What does this repo do? ")
	require.NoError(t, err)
	require.Len(t, transcript, 2)

	assert.Equal(t, domain.ChatRoleUser, transcript[0].Role)
	assert.Equal(t, "What does this repo do?", transcript[0].Content)
	assert.Equal(t, "15:04:05", transcript[0].Clock())
	assert.Equal(t, domain.ChatRoleAssistant, transcript[1].Role)
	assert.Equal(t, domain.PlaceholderReply, transcript[1].Content)

	s.ClearChat()
	assert.Empty(t, s.Transcript())
}

func TestFlashIsTakenOnce(t *testing.T) {
	s := NewStore("").Create()
	assert.Nil(t, s.TakeFlash())

	s.SetFlash(FlashError, "Error loading repositories")
	f := s.TakeFlash()
	require.NotNil(t, f)
	assert.Equal(t, FlashError, f.Kind)
	assert.Nil(t, s.TakeFlash())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore("env").Create()
	_, err := s.Load(context.Background(), &mockLister{repos: []domain.RepositorySummary{repo("octocat/a", 1)}}, "", "octocat")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.True(t, snap.HasToken)
	assert.Equal(t, "octocat", snap.Account)
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "octocat/a", snap.Selected.FullName)

	snap.Repositories[0].StarCount = 99
	assert.Equal(t, 1, s.Repositories()[0].StarCount)
}

func TestStore(t *testing.T) {
	st := NewStore("")

	s := st.Create()
	assert.NotEmpty(t, s.ID)

	again, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, again)

	_, ok = st.Get("unknown-id")
	assert.False(t, ok)

	st.Create()
	assert.Equal(t, 2, st.Len())

	st.Delete(s.ID)
	_, ok = st.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestStore_NewIsNotKept(t *testing.T) {
	st := NewStore("env-token")

	s := st.New()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "env-token", s.ResolveToken(""))
	assert.Equal(t, 0, st.Len())

	_, ok := st.Get(s.ID)
	assert.False(t, ok)
}

func TestStore_IdleSessionsExpire(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := NewStore("", WithIdleTimeout(10*time.Minute), withClock(clock))

	idle := st.Create()
	active := st.Create()

	now = now.Add(8 * time.Minute)
	_, ok := st.Get(active.ID)
	require.True(t, ok)

	now = now.Add(5 * time.Minute)

	// idle for 13 minutes
	_, ok = st.Get(idle.ID)
	assert.False(t, ok)

	// last used 5 minutes ago
	_, ok = st.Get(active.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestStore_CreateSweepsIdleSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := NewStore("", WithIdleTimeout(time.Minute), withClock(clock))

	for i := 0; i < 100; i++ {
		st.Create()
	}
	assert.Equal(t, 100, st.Len())

	now = now.Add(2 * time.Minute)
	st.Create()
	assert.Equal(t, 1, st.Len())
}

func TestWithIdleTimeout_IgnoresNonPositive(t *testing.T) {
	st := NewStore("", WithIdleTimeout(0))
	assert.Equal(t, DefaultIdleTimeout, st.idleTimeout)
}

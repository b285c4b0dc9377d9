package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	wrapped := fmt.Errorf("failed to list repositories: %w", NewNetworkError(cause))

	assert.True(t, IsNetwork(wrapped))
	assert.False(t, IsAuthentication(wrapped))
	assert.False(t, IsRemote(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNetwork, appErr.Code)
}

func TestPredicatesOnPlainError(t *testing.T) {
	err := stderrors.New("boom")
	assert.False(t, IsNetwork(err))
	assert.False(t, IsNotFound(err))
	_, ok := As(err)
	assert.False(t, ok)
}

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "remote with status",
			err:  NewRemoteError(500, "Server Error", nil),
			want: "REMOTE_ERROR: Server Error (status 500)",
		},
		{
			name: "auth with cause",
			err:  NewAuthenticationError("Bad credentials", 401, stderrors.New("401")),
			want: "AUTHENTICATION_ERROR: Bad credentials (status 401) (401)",
		},
		{
			name: "not found",
			err:  NewNotFoundError("repository octocat/x"),
			want: "NOT_FOUND: repository octocat/x not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRepositorySummaryDisplayHelpers(t *testing.T) {
	lang := "Go"
	desc := "A tool"
	updated := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	full := RepositorySummary{
		FullName:        "octocat/a",
		PrimaryLanguage: &lang,
		Description:     &desc,
		UpdatedAt:       &updated,
		IsPrivate:       true,
	}
	assert.Equal(t, "Go", full.LanguageOr("Not specified"))
	assert.Equal(t, "A tool", full.DescriptionOr("-"))
	assert.Equal(t, "2024-03-09", full.UpdatedDate())
	assert.Equal(t, "private", full.Visibility())

	empty := RepositorySummary{FullName: "octocat/b"}
	assert.Equal(t, "Not specified", empty.LanguageOr("Not specified"))
	assert.Equal(t, "-", empty.DescriptionOr("-"))
	assert.Equal(t, "", empty.UpdatedDate())
	assert.Equal(t, "public", empty.Visibility())
}

func TestFindByFullName(t *testing.T) {
	repos := []RepositorySummary{{FullName: "octocat/a"}, {FullName: "octocat/b", StarCount: 2}}

	got, ok := FindByFullName(repos, "octocat/b")
	assert.True(t, ok)
	assert.Equal(t, 2, got.StarCount)

	_, ok = FindByFullName(repos, "octocat/c")
	assert.False(t, ok)
}

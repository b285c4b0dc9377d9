package domain

import "time"

// RepositorySummary is the normalized metadata of one GitHub repository.
// Values are built once per fetch and never modified afterward.
type RepositorySummary struct {
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Description     *string    `json:"description"`
	PrimaryLanguage *string    `json:"primary_language"` // nil when GitHub detected no language
	StarCount       int        `json:"star_count"`
	URL             string     `json:"url"`
	IsPrivate       bool       `json:"is_private"`
	ForksCount      int        `json:"forks_count"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// LanguageOr returns the primary language or fallback when none was detected
func (r RepositorySummary) LanguageOr(fallback string) string {
	if r.PrimaryLanguage == nil {
		return fallback
	}
	return *r.PrimaryLanguage
}

// DescriptionOr returns the description or fallback when there is none
func (r RepositorySummary) DescriptionOr(fallback string) string {
	if r.Description == nil || *r.Description == "" {
		return fallback
	}
	return *r.Description
}

// UpdatedDate formats UpdatedAt as YYYY-MM-DD, or "" when unknown
func (r RepositorySummary) UpdatedDate() string {
	if r.UpdatedAt == nil {
		return ""
	}
	return r.UpdatedAt.Format("2006-01-02")
}

// Visibility returns "private" or "public"
func (r RepositorySummary) Visibility() string {
	if r.IsPrivate {
		return "private"
	}
	return "public"
}

// FindByFullName returns the repository with the given full name
func FindByFullName(repos []RepositorySummary, fullName string) (RepositorySummary, bool) {
	for _, r := range repos {
		if r.FullName == fullName {
			return r, true
		}
	}
	return RepositorySummary{}, false
}

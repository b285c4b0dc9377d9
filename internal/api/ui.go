package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-repo-chat/internal/config"
	"github.com/kurihiro0119/github-repo-chat/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type repoOption struct {
	FullName string
	Selected bool
}

type repoDetail struct {
	FullName    string
	Description string
	Language    string
	Stars       int
	Forks       int
	Updated     string
	Visibility  string
	URL         string
}

type chatLine struct {
	Role    string
	Content string
	Clock   string
}

type pageView struct {
	Flash        *session.Flash
	TokenHint    string
	Account      string
	Repositories []repoOption
	Selected     *repoDetail
	Transcript   []chatLine
}

func newPageView(snap session.Snapshot, flash *session.Flash) pageView {
	view := pageView{
		Flash:     flash,
		TokenHint: tokenHint(snap.TokenSource),
		Account:   snap.Account,
	}

	for _, r := range snap.Repositories {
		view.Repositories = append(view.Repositories, repoOption{
			FullName: r.FullName,
			Selected: snap.Selected != nil && snap.Selected.FullName == r.FullName,
		})
	}

	if r := snap.Selected; r != nil {
		view.Selected = &repoDetail{
			FullName:    r.FullName,
			Description: r.DescriptionOr(""),
			Language:    r.LanguageOr("Not specified"),
			Stars:       r.StarCount,
			Forks:       r.ForksCount,
			Updated:     r.UpdatedDate(),
			Visibility:  r.Visibility(),
			URL:         r.URL,
		}
	}

	for _, m := range snap.Transcript {
		view.Transcript = append(view.Transcript, chatLine{
			Role:    string(m.Role),
			Content: m.Content,
			Clock:   m.Clock(),
		})
	}

	return view
}

// tokenHint tells the user which token a blank field falls back to
func tokenHint(source session.TokenSource) string {
	switch source {
	case session.TokenSourceTyped:
		return "using the token entered earlier"
	case session.TokenSourceEnvironment:
		return "using " + config.TokenEnvVar
	default:
		return ""
	}
}

// Index renders the page
// GET /
func (h *Handler) Index(c *gin.Context) {
	sess := currentSession(c)
	c.HTML(http.StatusOK, "index.html", newPageView(sess.Snapshot(), sess.TakeFlash()))
}

// LoadForm handles the "Load repositories" button
// POST /load
func (h *Handler) LoadForm(c *gin.Context) {
	sess := currentSession(c)

	repos, err := sess.Load(c.Request.Context(), h.lister, c.PostForm("token"), c.PostForm("account"))
	if err != nil {
		h.logError(sess, "load repositories", err)
		sess.SetFlash(session.FlashError, "Error loading repositories: "+userMessage(err))
	} else {
		sess.SetFlash(session.FlashSuccess, fmt.Sprintf("Loaded %d repositories", len(repos)))
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// SelectForm handles the repository selector
// POST /select
func (h *Handler) SelectForm(c *gin.Context) {
	sess := currentSession(c)

	if _, err := sess.Select(c.PostForm("full_name")); err != nil {
		sess.SetFlash(session.FlashError, userMessage(err))
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// ChatForm handles the chat input
// POST /chat
func (h *Handler) ChatForm(c *gin.Context) {
	sess := currentSession(c)

	if _, err := sess.SendChat(c.PostForm("message")); err != nil {
		sess.SetFlash(session.FlashError, userMessage(err))
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// ClearChatForm handles the "Clear chat" button
// POST /chat/clear
func (h *Handler) ClearChatForm(c *gin.Context) {
	currentSession(c).ClearChat()
	c.Redirect(http.StatusSeeOther, "/")
}

// ResetSession discards the caller's session
// POST /session/reset
func (h *Handler) ResetSession(c *gin.Context) {
	h.store.Delete(currentSession(c).ID)
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

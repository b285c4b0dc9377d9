package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-repo-chat/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-chat/internal/errors"
	"github.com/kurihiro0119/github-repo-chat/internal/lister"
	"github.com/kurihiro0119/github-repo-chat/internal/session"
)

// Handler handles API and page requests
type Handler struct {
	lister lister.Lister
	store  *session.Store
	log    *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(l lister.Lister, store *session.Store, log *logrus.Logger) *Handler {
	return &Handler{
		lister: l,
		store:  store,
		log:    log,
	}
}

type loadRequest struct {
	Token   string `json:"token"`
	Account string `json:"account"`
}

type selectRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type sessionResponse struct {
	ID         string                    `json:"id"`
	Account    string                    `json:"account"`
	HasToken   bool                      `json:"has_token"`
	TokenFrom  session.TokenSource       `json:"token_source"`
	Count      int                       `json:"repository_count"`
	Selected   *domain.RepositorySummary `json:"selected"`
	Transcript []domain.ChatMessage      `json:"transcript"`
}

// GetSession returns the state of the caller's session
// GET /api/v1/session
func (h *Handler) GetSession(c *gin.Context) {
	snap := currentSession(c).Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"data": sessionResponse{
			ID:         snap.ID,
			Account:    snap.Account,
			HasToken:   snap.HasToken,
			TokenFrom:  snap.TokenSource,
			Count:      len(snap.Repositories),
			Selected:   snap.Selected,
			Transcript: snap.Transcript,
		},
	})
}

// LoadRepositories fetches the repository list from GitHub into the session
// POST /api/v1/session/repositories
func (h *Handler) LoadRepositories(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	sess := currentSession(c)
	repos, err := sess.Load(c.Request.Context(), h.lister, req.Token, req.Account)
	if err != nil {
		h.logError(sess, "load repositories", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": repos,
	})
}

// ListRepositories returns the repositories held by the session
// GET /api/v1/session/repositories
func (h *Handler) ListRepositories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": currentSession(c).Repositories(),
	})
}

// GetRepository returns one repository of the session's list
// GET /api/v1/session/repositories/:owner/:name
func (h *Handler) GetRepository(c *gin.Context) {
	fullName := c.Param("owner") + "/" + c.Param("name")

	repo, err := currentSession(c).Repository(fullName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": repo,
	})
}

// SelectRepository changes the selected repository
// PUT /api/v1/session/selection
func (h *Handler) SelectRepository(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("full_name is required"))
		return
	}

	repo, err := currentSession(c).Select(req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": repo,
	})
}

// SendChat posts a message to the placeholder chat
// POST /api/v1/session/chat
func (h *Handler) SendChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("message is required"))
		return
	}

	transcript, err := currentSession(c).SendChat(req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": transcript,
	})
}

// ClearChat empties the chat transcript
// DELETE /api/v1/session/chat
func (h *Handler) ClearChat(c *gin.Context) {
	sess := currentSession(c)
	sess.ClearChat()

	c.JSON(http.StatusOK, gin.H{
		"data": sess.Transcript(),
	})
}

// GetRateLimit returns the GitHub rate limit seen on the last response
// GET /api/v1/rate-limit
func (h *Handler) GetRateLimit(c *gin.Context) {
	var status lister.RateStatus
	if reporter, ok := h.lister.(lister.RateLimitReporter); ok {
		status = reporter.RateLimit()
	}

	c.JSON(http.StatusOK, gin.H{
		"data": status,
	})
}

// HealthCheck returns the health status of the server
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *Handler) logError(sess *session.Session, action string, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"session": sess.ID,
		"action":  action,
	}).Warn("request failed")
}

// httpStatus maps an error onto the status returned to the browser or client
func httpStatus(err error) int {
	appErr, ok := apperrors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case apperrors.ErrCodeAuthentication:
		return http.StatusUnauthorized
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeRemote:
		return http.StatusBadGateway
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// userMessage renders an error for display
func userMessage(err error) string {
	appErr, ok := apperrors.As(err)
	if !ok {
		return err.Error()
	}
	switch appErr.Code {
	case apperrors.ErrCodeAuthentication:
		if appErr.StatusCode != 0 {
			return fmt.Sprintf("GitHub rejected the token (HTTP %d): %s", appErr.StatusCode, appErr.Message)
		}
		return appErr.Message
	case apperrors.ErrCodeNetwork:
		return "Could not reach GitHub: " + errorCause(appErr)
	case apperrors.ErrCodeRemote:
		return fmt.Sprintf("GitHub returned HTTP %d: %s", appErr.StatusCode, appErr.Message)
	default:
		return appErr.Message
	}
}

func errorCause(appErr *apperrors.AppError) string {
	if appErr.Err != nil {
		return appErr.Err.Error()
	}
	return appErr.Message
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	status := httpStatus(err)

	body := gin.H{
		"code":    apperrors.ErrCodeInternal,
		"message": err.Error(),
	}
	if appErr, ok := apperrors.As(err); ok {
		body["code"] = appErr.Code
		body["message"] = userMessage(err)
		if appErr.StatusCode != 0 {
			body["status_code"] = appErr.StatusCode
		}
	}

	c.JSON(status, gin.H{
		"error": body,
	})
}

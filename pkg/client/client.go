package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/kurihiro0119/github-repo-chat/internal/domain"
	"github.com/kurihiro0119/github-repo-chat/internal/lister"
)

// Client is the API client for github-repo-chat.
// A Client holds one server-side session through its cookie jar.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError is an error envelope returned by the server
type APIError struct {
	HTTPStatus int
	Code       string `json:"code"`
	Message    string `json:"message"`
	// StatusCode is the GitHub status behind the error, when there is one
	StatusCode int `json:"status_code"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error: HTTP %d - %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("API error: HTTP %d - %s: %s", e.HTTPStatus, e.Code, e.Message)
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	// cookiejar.New only fails with a non-nil PublicSuffixList
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// LoadRepositories asks the server to fetch repositories from GitHub.
// An empty token makes the server use its configured token.
func (c *Client) LoadRepositories(ctx context.Context, token, account string) ([]domain.RepositorySummary, error) {
	body := map[string]string{
		"token":   token,
		"account": account,
	}

	var response struct {
		Data []domain.RepositorySummary `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/session/repositories", body, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListRepositories returns the repositories last loaded in this client's session
func (c *Client) ListRepositories(ctx context.Context) ([]domain.RepositorySummary, error) {
	var response struct {
		Data []domain.RepositorySummary `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/session/repositories", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRepository returns one loaded repository by its "owner/name" full name
func (c *Client) GetRepository(ctx context.Context, fullName string) (*domain.RepositorySummary, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository name %q, expected owner/name", fullName)
	}
	path := fmt.Sprintf("/api/v1/session/repositories/%s/%s", url.PathEscape(owner), url.PathEscape(name))

	var response struct {
		Data *domain.RepositorySummary `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Select changes the selected repository
func (c *Client) Select(ctx context.Context, fullName string) (*domain.RepositorySummary, error) {
	var response struct {
		Data *domain.RepositorySummary `json:"data"`
	}
	body := map[string]string{"full_name": fullName}
	if err := c.do(ctx, http.MethodPut, "/api/v1/session/selection", body, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// SendChat posts a chat message and returns the transcript
func (c *Client) SendChat(ctx context.Context, message string) ([]domain.ChatMessage, error) {
	var response struct {
		Data []domain.ChatMessage `json:"data"`
	}
	body := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, "/api/v1/session/chat", body, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ClearChat empties the chat transcript
func (c *Client) ClearChat(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/session/chat", nil, nil)
}

// RateLimit returns the GitHub rate limit last seen by the server
func (c *Client) RateLimit(ctx context.Context) (*lister.RateStatus, error) {
	var response struct {
		Data *lister.RateStatus `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/rate-limit", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		envelope.Error.HTTPStatus = resp.StatusCode
		return envelope.Error
	}

	return &APIError{
		HTTPStatus: resp.StatusCode,
		Message:    strings.TrimSpace(string(raw)),
	}
}

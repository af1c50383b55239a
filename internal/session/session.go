// internal/session/session.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"claims-client/internal/common/httpx"
)

// TokenResponse holds the response from the backend's login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Session holds the bearer credential for the current user and exposes
// it as request headers. Absence of a credential yields an empty header
// map; authorization failures are then the backend's to report.
type Session struct {
	baseURL    string
	httpClient *httpx.Client

	mu          sync.Mutex
	accessToken string
}

// New creates a Session against the given backend base URL.
func New(baseURL string, client *httpx.Client) *Session {
	return &Session{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// Login exchanges credentials for a bearer token using the backend's
// form-encoded password flow and caches the token on success.
func (s *Session) Login(ctx context.Context, username, password string) error {
	tokenURL := fmt.Sprintf("%s/auth/login", s.baseURL)

	data := url.Values{}
	data.Set("username", username)
	data.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}

	s.SetToken(tokenResp.AccessToken)
	return nil
}

// SetToken installs an externally supplied bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

// Token returns the current bearer token, empty if not authenticated.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Authenticated reports whether a credential is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Headers returns the authorization headers for outgoing requests.
// Without a credential it returns an empty map, never nil.
func (s *Session) Headers() map[string]string {
	headers := map[string]string{}
	if token := s.Token(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers
}

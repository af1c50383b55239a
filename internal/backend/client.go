// internal/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	clienterrors "claims-client/internal/common/errors"
	"claims-client/internal/common/httpx"
	"claims-client/internal/common/logger"
	"claims-client/internal/models"
	"claims-client/internal/session"
)

// Client is the typed API client for the claims backend. All methods
// return *clienterrors.ClientError-wrapped failures: transport problems
// and non-2xx statuses map to network errors, leaving timeout
// classification to callers that own the deadline.
type Client struct {
	baseURL    string
	httpClient *httpx.Client
	session    *session.Session
	logger     logger.Logger
}

// NewClient creates a backend client. The session supplies authorization
// headers; requests without a credential go out unauthenticated.
func NewClient(baseURL string, httpClient *httpx.Client, sess *session.Session, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		session:    sess,
		logger:     log,
	}
}

// Upload sends a single document as multipart form data and returns the
// backend's job handle for it.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, docType string) (*models.UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, clienterrors.NewNetworkError("upload", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, clienterrors.NewNetworkError("upload", err)
	}
	if err := writer.WriteField("doc_type", docType); err != nil {
		return nil, clienterrors.NewNetworkError("upload", err)
	}
	if err := writer.Close(); err != nil {
		return nil, clienterrors.NewNetworkError("upload", err)
	}

	req, err := c.newRequest(http.MethodPost, "/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result models.UploadResponse
	if err := c.execute(ctx, req, "upload", &result); err != nil {
		return nil, err
	}

	c.logger.Debug("Document uploaded", map[string]interface{}{
		"doc_id":   result.DocID,
		"filename": result.Filename,
	})
	return &result, nil
}

// Status fetches the current processing state of an uploaded document.
func (c *Client) Status(ctx context.Context, docID string) (*models.StatusResponse, error) {
	req, err := c.newRequest(http.MethodGet, fmt.Sprintf("/status/%s", docID), nil)
	if err != nil {
		return nil, err
	}

	var result models.StatusResponse
	if err := c.execute(ctx, req, "status", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitClaim posts a claim for adjudication. The caller's context
// carries the submission deadline.
func (c *Client) SubmitClaim(ctx context.Context, claim *models.ClaimRequest) (*models.ClaimDecision, error) {
	payload, err := json.Marshal(claim)
	if err != nil {
		return nil, clienterrors.NewNetworkError("submit claim", err)
	}

	req, err := c.newRequest(http.MethodPost, "/claims/submit", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result models.ClaimDecision
	if err := c.execute(ctx, req, "submit claim", &result); err != nil {
		return nil, err
	}

	c.logger.Info("Claim decision received", map[string]interface{}{
		"claim_id": result.ClaimID,
		"decision": string(result.Decision),
	})
	return &result, nil
}

// FetchExplanation retrieves the detailed reasoning behind a decision.
func (c *Client) FetchExplanation(ctx context.Context, claimID string) (*models.DetailedExplanation, error) {
	req, err := c.newRequest(http.MethodGet, fmt.Sprintf("/claims/%s/explanation", claimID), nil)
	if err != nil {
		return nil, err
	}

	var result models.DetailedExplanation
	if err := c.execute(ctx, req, "fetch explanation", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, clienterrors.NewNetworkError(method+" "+path, err)
	}

	for key, value := range c.session.Headers() {
		req.Header.Set(key, value)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) execute(ctx context.Context, req *http.Request, operation string, result interface{}) error {
	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return clienterrors.NewNetworkError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("Backend returned error status", map[string]interface{}{
			"operation": operation,
			"status":    resp.StatusCode,
			"body":      string(body),
		})
		return clienterrors.NewHTTPStatusError(operation, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return clienterrors.NewNetworkError(operation, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// Package client is a Go SDK for the InnoBridge HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/innobridge/platform/internal/models"
)

// APIError is an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: %s", e.Code)
	}
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// Client is a Go SDK for the InnoBridge API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken sets the session token up front
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new InnoBridge client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken replaces the session token, typically after Login or Signup
func (c *Client) SetToken(token string) {
	c.token = token
}

// doRequest performs an HTTP request and returns the raw response body
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return data, nil
}

// call performs a request and decodes the API envelope into out. A nil out
// discards the data payload.
func (c *Client) call(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	data, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		if result.Error != nil {
			return result.Error
		}
		return fmt.Errorf("API request failed")
	}

	if out != nil && result.Data != nil {
		if err := json.Unmarshal(result.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}

	return nil
}

// --- Auth ---

// Signup creates a new account and stores its session token on the client
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.call(ctx, "POST", "/api/v1/auth/signup", req, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Login authenticates and stores the session token on the client
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.call(ctx, "POST", "/api/v1/auth/login", req, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Me returns the authenticated principal
func (c *Client) Me(ctx context.Context) (*models.Principal, error) {
	var out models.Principal
	if err := c.call(ctx, "GET", "/api/v1/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Catalog ---

// Domains lists the challenge domains
func (c *Client) Domains(ctx context.Context) ([]string, error) {
	var out struct {
		Domains []struct {
			Name string `json:"name"`
		} `json:"domains"`
	}
	if err := c.call(ctx, "GET", "/api/v1/domains", nil, &out); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(out.Domains))
	for _, d := range out.Domains {
		names = append(names, d.Name)
	}
	return names, nil
}

// --- Industry ---

// CreateChallenge posts a new challenge
func (c *Client) CreateChallenge(ctx context.Context, req models.CreateChallengeRequest) (*models.Challenge, error) {
	var out models.Challenge
	if err := c.call(ctx, "POST", "/api/v1/industry/challenges", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyChallenges lists the caller's own challenges, newest first
func (c *Client) MyChallenges(ctx context.Context) ([]*models.Challenge, error) {
	var out struct {
		Challenges []*models.Challenge `json:"challenges"`
	}
	if err := c.call(ctx, "GET", "/api/v1/industry/challenges", nil, &out); err != nil {
		return nil, err
	}
	return out.Challenges, nil
}

// ChallengeReview returns an owned challenge together with its proposals
func (c *Client) ChallengeReview(ctx context.Context, id string) (*models.Challenge, []*models.Proposal, error) {
	var out struct {
		Challenge *models.Challenge  `json:"challenge"`
		Proposals []*models.Proposal `json:"proposals"`
	}
	if err := c.call(ctx, "GET", "/api/v1/industry/challenges/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Challenge, out.Proposals, nil
}

// DecideProposal accepts or rejects a pending proposal
func (c *Client) DecideProposal(ctx context.Context, proposalID string, status models.ProposalStatus) (*models.Proposal, error) {
	var out models.Proposal
	req := models.DecisionRequest{Status: status}
	if err := c.call(ctx, "POST", "/api/v1/industry/proposals/"+url.PathEscape(proposalID)+"/decision", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Startup ---

// BoardOptions filters the challenge board
type BoardOptions struct {
	Search string
	Domain string
}

// Board lists challenges on the startup board
func (c *Client) Board(ctx context.Context, opts BoardOptions) ([]*models.Challenge, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Domain != "" {
		q.Set("domain", opts.Domain)
	}

	path := "/api/v1/startup/challenges"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out struct {
		Challenges []*models.Challenge `json:"challenges"`
	}
	if err := c.call(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Challenges, nil
}

// ChallengeView returns a challenge and whether the caller already submitted
// a proposal for it
func (c *Client) ChallengeView(ctx context.Context, id string) (*models.Challenge, bool, error) {
	var out struct {
		Challenge        *models.Challenge `json:"challenge"`
		AlreadySubmitted bool              `json:"already_submitted"`
	}
	if err := c.call(ctx, "GET", "/api/v1/startup/challenges/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, false, err
	}
	return out.Challenge, out.AlreadySubmitted, nil
}

// SubmitProposal submits a proposal against a challenge
func (c *Client) SubmitProposal(ctx context.Context, challengeID, content string) (*models.Proposal, error) {
	var out models.Proposal
	req := models.SubmitProposalRequest{Content: content}
	if err := c.call(ctx, "POST", "/api/v1/startup/challenges/"+url.PathEscape(challengeID)+"/proposals", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyProposals lists the caller's proposals, newest first
func (c *Client) MyProposals(ctx context.Context) ([]*models.Proposal, error) {
	var out struct {
		Proposals []*models.Proposal `json:"proposals"`
	}
	if err := c.call(ctx, "GET", "/api/v1/startup/proposals", nil, &out); err != nil {
		return nil, err
	}
	return out.Proposals, nil
}

// Package coreapi is a focused HTTP client for the core domain service
// exposing product search, project guides, and compatibility checks.
// The service applies its own fallback behavior on its side; this client
// only reports calls that fail outright.
package coreapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"handycan-agent/internal/domain"
)

const defaultBaseURL = "http://localhost:3002"

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("coreapi: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client wraps the core service HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the core service at baseURL. A blank
// baseURL falls back to the local development default.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		return nil, errors.New("coreapi: http client must not be nil")
	}
	return c, nil
}

type searchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	StoreID  string `json:"storeId,omitempty"`
}

// SearchProducts queries the store inventory.
func (c *Client) SearchProducts(ctx context.Context, query, category, storeID string) (domain.ProductSearchResult, error) {
	var out domain.ProductSearchResult
	err := c.postJSON(ctx, "/api/products/search", searchRequest{
		Query:    query,
		Category: category,
		StoreID:  storeID,
	}, &out)
	if err != nil {
		return domain.ProductSearchResult{}, err
	}
	return out, nil
}

// GetProjectGuide fetches the step-by-step guide for a project type.
// The service answers with an absent guide when none exists; that is a
// valid non-error response.
func (c *Client) GetProjectGuide(ctx context.Context, projectType, difficulty string) (domain.GuideResult, error) {
	projectType = strings.TrimSpace(projectType)
	if projectType == "" {
		return domain.GuideResult{}, errors.New("coreapi: project type must not be empty")
	}

	path := "/api/guides/" + url.PathEscape(projectType)
	if difficulty != "" {
		path += "?difficulty=" + url.QueryEscape(difficulty)
	}

	var out domain.GuideResult
	if err := c.getJSON(ctx, path, &out); err != nil {
		return domain.GuideResult{}, err
	}
	return out, nil
}

type compatibilityRequest struct {
	ProductA string `json:"productA"`
	ProductB string `json:"productB"`
}

// CheckCompatibility asks whether two products can be used together.
func (c *Client) CheckCompatibility(ctx context.Context, productA, productB string) (domain.CompatibilityResult, error) {
	var out domain.CompatibilityResult
	err := c.postJSON(ctx, "/api/compatibility/check", compatibilityRequest{
		ProductA: productA,
		ProductB: productB,
	}, &out)
	if err != nil {
		return domain.CompatibilityResult{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("coreapi: marshal request: %w", err)
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("coreapi: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSONRequest(req, reqURL, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("coreapi: create request: %w", err)
	}

	return c.doJSONRequest(req, reqURL, out)
}

func (c *Client) doJSONRequest(req *http.Request, reqURL string, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("coreapi: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        reqURL,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("coreapi: read response body: %w", err)
	}
	if decErr := json.Unmarshal(buf, out); decErr != nil {
		return fmt.Errorf("coreapi: decode response: %w", decErr)
	}
	return nil
}

package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Errors surfaced by the client
var (
	// ErrCostExceeded is the machine-readable cost rejection. The fetcher
	// treats it as a signal to shrink the page size, not as a transient fault.
	ErrCostExceeded = errors.New("shopify: query cost exceeded")

	// ErrUnauthorized indicates a revoked or invalid access token
	ErrUnauthorized = errors.New("shopify: access token rejected")
)

// Credentials identify one store's Admin API access
type Credentials struct {
	ShopDomain  string
	AccessToken string
}

// ClientConfig holds Admin API client settings
type ClientConfig struct {
	APIVersion     string
	RequestTimeout time.Duration
}

// Client executes GraphQL queries against the Admin API
type Client struct {
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a new Admin API client
func NewClient(cfg ClientConfig) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-07"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// NewClientWithHTTPClient creates a client with a caller-owned http.Client.
// Used by tests to point the client at a stub server.
func NewClientWithHTTPClient(cfg ClientConfig, httpClient *http.Client) *Client {
	c := NewClient(cfg)
	c.httpClient = httpClient
	return c
}

// endpoint builds the Admin API URL for a shop. A scheme-qualified domain is
// taken verbatim so tests can target an http:// stub.
func (c *Client) endpoint(shopDomain string) string {
	if strings.HasPrefix(shopDomain, "http://") || strings.HasPrefix(shopDomain, "https://") {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", shopDomain, c.config.APIVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, c.config.APIVersion)
}

// Query executes one GraphQL query and returns the raw data payload plus the
// cost extension. Cost rejections come back as ErrCostExceeded.
func (c *Client) Query(ctx context.Context, creds Credentials, query string, variables map[string]any) (json.RawMessage, *CostInfo, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(creds.ShopDomain), bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, nil, ErrUnauthorized
	case http.StatusPaymentRequired, http.StatusNotFound:
		return nil, nil, fmt.Errorf("shopify: shop unavailable (status %d)", resp.StatusCode)
	default:
		return nil, nil, fmt.Errorf("shopify: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		for _, gqlErr := range envelope.Errors {
			code := strings.ToUpper(gqlErr.Extensions.Code)
			if code == "THROTTLED" || code == "MAX_COST_EXCEEDED" {
				return nil, &envelope.Extensions.Cost, fmt.Errorf("%w: %s", ErrCostExceeded, gqlErr.Message)
			}
		}
		return nil, nil, fmt.Errorf("shopify: query failed: %s", envelope.Errors[0].Message)
	}

	return envelope.Data, &envelope.Extensions.Cost, nil
}

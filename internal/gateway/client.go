// Package gateway is the single-shot HTTP client for the portfolio API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"folio/pkg/httputil"
)

const (
	defaultUserAgent = "folio/1.0"
	requestIDHeader  = "X-Request-ID"
)

type Options struct {
	BaseURL      string
	PortfolioURL string
	UserAgent    string
	HTTPClient   *http.Client
}

// Client holds no session state. Calls are never retried and carry no
// timeout beyond what the underlying transport imposes.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	portfolioURL string
	userAgent    string
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	portfolioURL := opts.PortfolioURL
	if portfolioURL == "" {
		portfolioURL = baseURL + "/api/portfolio"
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		portfolioURL: portfolioURL,
		userAgent:    userAgent,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, httputil.TransportError(err)
	}
	return resp, nil
}

// doJSON sends in (if non-nil) as a JSON body and decodes a 2xx answer into
// out (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return httputil.Discard(resp)
	}
	return httputil.DecodeJSON(resp, out)
}

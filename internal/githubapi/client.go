package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/klimeurt/repo-collector/internal/jsonvalue"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 64 << 10

// Response is one decoded API response
type Response struct {
	Body  jsonvalue.Value
	Links Links
}

// RequestOption customizes the outgoing request. The same options are
// applied to every page of a paginated listing.
type RequestOption func(*requestConfig)

type requestConfig struct {
	method string
	header http.Header
	body   []byte
}

// WithMethod sets the HTTP method. Defaults to GET.
func WithMethod(method string) RequestOption {
	return func(c *requestConfig) {
		c.method = method
	}
}

// WithHeader adds a request header
func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		c.header.Add(key, value)
	}
}

// WithBody sets the request body
func WithBody(body []byte) RequestOption {
	return func(c *requestConfig) {
		c.body = body
	}
}

// Client issues JSON requests against a paginated REST API
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client. A nil httpClient means http.DefaultClient;
// authentication and timeouts belong to the supplied client's transport.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// Do performs exactly one request against url and decodes the JSON body
// together with the pagination links of the response.
func (c *Client) Do(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	cfg := requestConfig{method: http.MethodGet, header: http.Header{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	var body io.Reader
	if cfg.body != nil {
		body = bytes.NewReader(cfg.body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range cfg.header {
		req.Header[key] = append([]string(nil), values...)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", cfg.method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp, url)
	}

	decoded, err := jsonvalue.Decode(resp.Body)
	if err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}

	links, err := ParseLinks(resp.Header)
	if err != nil {
		return nil, fmt.Errorf("response from %s: %w", url, err)
	}

	return &Response{Body: decoded, Links: links}, nil
}

func newHTTPError(resp *http.Response, url string) *HTTPError {
	httpError := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        url,
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var wireError struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &wireError) == nil && wireError.Message != "" {
		httpError.Message = wireError.Message
	} else {
		httpError.Message = string(bytes.TrimSpace(data))
	}
	return httpError
}

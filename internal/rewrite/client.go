package rewrite

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultRequestTimeout bounds a single rewrite request.
	DefaultRequestTimeout = 60 * time.Second
)

// Client speaks the OpenAI-compatible chat-completions protocol.
// It satisfies Generator.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithModel sets the model name sent with each request.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a client for the given chat-completions endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		model:    DefaultModel,
		client:   &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate sends prompt to the endpoint and returns the completion text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := c.buildRequest(prompt)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RewriteError{
			Kind:   classifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Detail: errorDetail(raw),
		}
	}

	content := gjson.GetBytes(raw, "choices.0.message.content").String()
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func (c *Client) buildRequest(prompt string) (string, error) {
	body, err := sjson.Set("", "model", c.model)
	if err != nil {
		return "", err
	}
	body, err = sjson.Set(body, "messages.0.role", "user")
	if err != nil {
		return "", err
	}
	body, err = sjson.Set(body, "messages.0.content", prompt)
	if err != nil {
		return "", err
	}
	return body, nil
}

// errorDetail extracts the endpoint's error message when the body carries
// one, falling back to the trimmed raw body.
func errorDetail(raw []byte) string {
	if msg := gjson.GetBytes(raw, "error.message").String(); msg != "" {
		return msg
	}
	return strings.TrimSpace(string(raw))
}

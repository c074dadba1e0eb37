package check

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/scriba-editor/scriba/internal/annotate"
)

// DefaultRequestTimeout bounds a single check request.
const DefaultRequestTimeout = 15 * time.Second

// LanguageToolClient submits text to a LanguageTool-protocol HTTP endpoint
// and converts its matches into error spans.
type LanguageToolClient struct {
	endpoint string
	client   *http.Client
}

// LanguageToolOption configures a LanguageToolClient.
type LanguageToolOption func(*LanguageToolClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) LanguageToolOption {
	return func(lt *LanguageToolClient) {
		if c != nil {
			lt.client = c
		}
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) LanguageToolOption {
	return func(lt *LanguageToolClient) {
		if d > 0 {
			lt.client.Timeout = d
		}
	}
}

// NewLanguageToolClient creates a client for the given endpoint URL.
func NewLanguageToolClient(endpoint string, opts ...LanguageToolOption) (*LanguageToolClient, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	lt := &LanguageToolClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(lt)
	}
	return lt, nil
}

// Check submits text and returns the error spans the endpoint reported.
func (lt *LanguageToolClient) Check(ctx context.Context, text, language string) ([]annotate.ErrorSpan, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &CheckError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := lt.client.Do(req)
	if err != nil {
		return nil, &CheckError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CheckError{Op: "response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &CheckError{Op: "response", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return parseMatches(body), nil
}

func parseMatches(body []byte) []annotate.ErrorSpan {
	var spans []annotate.ErrorSpan
	gjson.GetBytes(body, "matches").ForEach(func(_, match gjson.Result) bool {
		span := annotate.ErrorSpan{
			Offset:  int(match.Get("offset").Int()),
			Length:  int(match.Get("length").Int()),
			Message: match.Get("message").String(),
		}
		match.Get("replacements").ForEach(func(_, rep gjson.Result) bool {
			if v := rep.Get("value").String(); v != "" {
				span.Suggestions = append(span.Suggestions, v)
			}
			return true
		})
		spans = append(spans, span)
		return true
	})
	return spans
}

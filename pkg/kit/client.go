// Package kit is a minimal Kit (ConvertKit) v4 client: form subscriptions and
// subscriber tagging.
package kit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.kit.com/v4"

// Client performs Kit API operations.
type Client interface {
	SubscribeToForm(ctx context.Context, formID string, sub Subscriber) (*SubscriberResponse, error)
	TagSubscriber(ctx context.Context, tag, email string) error
}

// Subscriber is the body of a form subscription. Kit custom fields are strings.
type Subscriber struct {
	EmailAddress string            `json:"email_address"`
	FirstName    string            `json:"first_name,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// SubscriberResponse is Kit's answer to a subscription.
type SubscriberResponse struct {
	Subscriber struct {
		ID           int64  `json:"id"`
		EmailAddress string `json:"email_address"`
		State        string `json:"state"`
	} `json:"subscriber"`
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kit: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus exposes the status code for transient-error classification.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Kit client authenticated with a v4 API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SubscribeToForm(ctx context.Context, formID string, sub Subscriber) (*SubscriberResponse, error) {
	if formID == "" {
		return nil, eris.New("kit: form id is required")
	}
	var out SubscriberResponse
	if err := c.post(ctx, "/forms/"+url.PathEscape(formID)+"/subscribers", sub, &out); err != nil {
		return nil, eris.Wrapf(err, "kit: subscribe to form %s", formID)
	}
	return &out, nil
}

func (c *httpClient) TagSubscriber(ctx context.Context, tag, email string) error {
	body := map[string]string{"email_address": email}
	if err := c.post(ctx, "/tags/"+url.PathEscape(tag)+"/subscribers", body, nil); err != nil {
		return eris.Wrapf(err, "kit: tag subscriber with %s", tag)
	}
	return nil
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Kit-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "unmarshal response")
		}
	}
	return nil
}

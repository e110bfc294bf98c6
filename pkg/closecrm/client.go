// Package closecrm is a minimal Close.com API client for creating leads.
package closecrm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.close.com/api/v1"

// Client performs Close API operations.
type Client interface {
	CreateLead(ctx context.Context, lead Lead) (*LeadResponse, error)
}

// Lead is the body of a lead creation.
type Lead struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Contacts    []Contact      `json:"contacts,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// Contact is a person attached to a lead.
type Contact struct {
	Name   string  `json:"name,omitempty"`
	Emails []Email `json:"emails,omitempty"`
	Phones []Phone `json:"phones,omitempty"`
}

// Email is a typed email address.
type Email struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// Phone is a typed phone number.
type Phone struct {
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

// LeadResponse is the created lead.
type LeadResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	StatusLabel string `json:"status_label"`
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("closecrm: unexpected status %d: %s", e.StatusCode, e.Body)
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

// NewClient creates a Close client. The API key is sent as the basic-auth
// username with an empty password.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) CreateLead(ctx context.Context, lead Lead) (*LeadResponse, error) {
	body, err := json.Marshal(lead)
	if err != nil {
		return nil, eris.Wrap(err, "closecrm: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lead/", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "closecrm: create request")
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "closecrm: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "closecrm: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out LeadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, eris.Wrap(err, "closecrm: unmarshal response")
	}
	return &out, nil
}

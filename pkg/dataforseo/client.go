// Package dataforseo is a minimal client for the DataForSEO v3 API: keyword
// search volume, live SERP results and the location catalogue.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.dataforseo.com/v3"

// statusOK is the DataForSEO task-level success code.
const statusOK = 20000

// Client performs DataForSEO API operations.
type Client interface {
	SearchVolume(ctx context.Context, req SearchVolumeRequest) ([]SearchVolumeResult, error)
	SERP(ctx context.Context, req SERPRequest) (*SERPResult, error)
	Locations(ctx context.Context, country string) ([]Location, error)
}

// SearchVolumeRequest asks for monthly Google Ads volume of keywords.
type SearchVolumeRequest struct {
	Keywords      []string `json:"keywords"`
	LocationCode  int      `json:"location_code"`
	LanguageCode  string   `json:"language_code"`
	SearchPartner bool     `json:"search_partners"`
}

// SearchVolumeResult is one keyword's volume.
type SearchVolumeResult struct {
	Keyword      string  `json:"keyword"`
	LocationCode int     `json:"location_code"`
	SearchVolume *int    `json:"search_volume"`
	Competition  string  `json:"competition"`
	CPC          float64 `json:"cpc"`
}

// SERPRequest asks for live organic results of one keyword.
type SERPRequest struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Device       string `json:"device"`
	OS           string `json:"os"`
}

// SERPResult holds the items of a results page.
type SERPResult struct {
	Keyword string     `json:"keyword"`
	Items   []SERPItem `json:"items"`
}

// SERPItem is one block of the results page. Organic items carry Domain and
// RankAbsolute; "map" items nest their entries in Items; "local_pack" items
// are entries themselves.
type SERPItem struct {
	Type         string     `json:"type"`
	RankGroup    int        `json:"rank_group"`
	RankAbsolute int        `json:"rank_absolute"`
	Domain       string     `json:"domain"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	PlaceID      string     `json:"place_id"`
	Items        []SERPItem `json:"items"`
}

// Location is an entry of the location catalogue.
type Location struct {
	LocationCode       int    `json:"location_code"`
	LocationName       string `json:"location_name"`
	LocationCodeParent int    `json:"location_code_parent"`
	CountryISOCode     string `json:"country_iso_code"`
	LocationType       string `json:"location_type"`
}

// APIError is a non-2xx HTTP response or a failed task.
type APIError struct {
	StatusCode int // HTTP status, 0 for task-level failures
	TaskCode   int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dataforseo: unexpected status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("dataforseo: task failed %d: %s", e.TaskCode, e.Message)
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

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	login    string
	password string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a DataForSEO client using HTTP basic auth. Requests are
// throttled to 10 req/s by default.
func NewClient(login, password string, opts ...Option) Client {
	c := &httpClient{
		login:    login,
		password: password,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope is the common response wrapper.
type envelope[T any] struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []T    `json:"result"`
	} `json:"tasks"`
}

// results unwraps the first task, checking the task status.
func (e *envelope[T]) results() ([]T, error) {
	if len(e.Tasks) == 0 {
		return nil, nil
	}
	task := e.Tasks[0]
	if task.StatusCode != 0 && task.StatusCode != statusOK {
		return nil, &APIError{TaskCode: task.StatusCode, Message: task.StatusMessage}
	}
	return task.Result, nil
}

func (c *httpClient) SearchVolume(ctx context.Context, req SearchVolumeRequest) ([]SearchVolumeResult, error) {
	if req.LanguageCode == "" {
		req.LanguageCode = "en"
	}

	var env envelope[SearchVolumeResult]
	if err := c.do(ctx, http.MethodPost, "/keywords_data/google_ads/search_volume/live", []SearchVolumeRequest{req}, &env); err != nil {
		return nil, eris.Wrap(err, "dataforseo: search volume")
	}
	return env.results()
}

func (c *httpClient) SERP(ctx context.Context, req SERPRequest) (*SERPResult, error) {
	if req.LanguageCode == "" {
		req.LanguageCode = "en"
	}
	if req.Device == "" {
		req.Device = "desktop"
	}
	if req.OS == "" {
		req.OS = "windows"
	}

	var env envelope[SERPResult]
	if err := c.do(ctx, http.MethodPost, "/serp/google/organic/live/regular", []SERPRequest{req}, &env); err != nil {
		return nil, eris.Wrapf(err, "dataforseo: serp %q", req.Keyword)
	}
	res, err := env.results()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return &SERPResult{Keyword: req.Keyword}, nil
	}
	return &res[0], nil
}

func (c *httpClient) Locations(ctx context.Context, country string) ([]Location, error) {
	if country == "" {
		country = "US"
	}

	var env envelope[Location]
	if err := c.do(ctx, http.MethodGet, "/keywords_data/google_ads/locations/"+country, nil, &env); err != nil {
		return nil, eris.Wrap(err, "dataforseo: locations")
	}
	return env.results()
}

func (c *httpClient) do(ctx context.Context, method, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limit wait")
		}
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.SetBasicAuth(c.login, c.password)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pipeline-score/internal/funnel"
	"github.com/sells-group/pipeline-score/internal/model"
	"github.com/sells-group/pipeline-score/internal/resilience"
	"github.com/sells-group/pipeline-score/internal/scorer"
	"github.com/sells-group/pipeline-score/internal/seo"
	"github.com/sells-group/pipeline-score/internal/token"
)

const submitBody = `{
  "quizId": "qz_0a1b2c3d",
  "email": "pat@acme.com",
  "consent": true,
  "answers": {
    "fullName": "Pat Doe",
    "businessName": "Acme Coatings",
    "city": "Milwaukee",
    "services": ["Epoxy", "Polyurea"],
    "radius": 45,
    "responseTime": 15,
    "smsCapability": "both",
    "premiumPages": "all",
    "reviewCount": 10
  }
}`

type volumes struct{}

func (volumes) Volumes(_ context.Context, kws []string, _ int) (map[string]int, error) {
	out := make(map[string]int, len(kws))
	for _, k := range kws {
		out[strings.ToLower(k)] = 1000
	}
	return out, nil
}

type serp struct{}

func (serp) SERP(_ context.Context, _ string, _ int) (*seo.SERP, error) {
	return &seo.SERP{Organic: []seo.OrganicResult{{Domain: "acme.com", Rank: 3}}}, nil
}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *funnel.Funnel) {
	t.Helper()
	codec, err := token.NewCodec("api-test-secret")
	require.NoError(t, err)
	f := funnel.New(scorer.New(nil), codec)
	srv := httptest.NewServer(NewServer(f, opts...).Routes())
	t.Cleanup(srv.Close)
	return srv, f
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealth(t *testing.T) {
	bs := resilience.NewBreakers(resilience.BreakerConfig{})
	bs.Get("serp")
	srv, _ := newTestServer(t, WithBreakers(bs))

	resp, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]any{"serp": "closed"}, body["breakers"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	_, _ = get(t, srv.URL+"/health")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartQuiz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := post(t, srv.URL+"/api/quiz/start", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Regexp(t, `^qz_[0-9a-f]{8}$`, body["quizId"])
}

func TestSubmitAndResult(t *testing.T) {
	srv, f := newTestServer(t)

	resp, body := post(t, srv.URL+"/api/quiz/submit", submitBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f.Wait()
	assert.Equal(t, "100k_offer", body["branch"])
	tok, _ := body["resultToken"].(string)
	require.NotEmpty(t, tok)
	assert.Equal(t, "/r/"+tok, body["resultPath"])

	resp, summary := get(t, srv.URL+"/api/results/"+tok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "qz_0a1b2c3d", summary["quizId"])
	assert.InDelta(t, 95, summary["score"], 0.001)
	assert.Equal(t, "green", summary["band"])
	assert.Len(t, summary["topMoves"], 3)
}

func TestSubmit_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := post(t, srv.URL+"/api/quiz/submit", `{"quizId":"qz_0a1b2c3d","email":"pat@acme.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request", body["error"])
	assert.NotEmpty(t, body["details"])

	resp, body = post(t, srv.URL+"/api/quiz/submit", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request", body["error"])
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	srv, _ := newTestServer(t, WithMaxBodyBytes(64))
	resp, body := post(t, srv.URL+"/api/quiz/submit", submitBody)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "request body too large", body["error"])
}

func TestResult_InvalidToken(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/results/not.a.token")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "invalid token"}, body)
}

func TestEmailReport(t *testing.T) {
	srv, _ := newTestServer(t)
	codec, err := token.NewCodec("api-test-secret")
	require.NoError(t, err)
	tok, err := codec.Sign(model.ResultSummary{QuizID: "qz_1", Score: 72})
	require.NoError(t, err)

	resp, body := post(t, srv.URL+"/api/email-report", `{"token":"`+tok+`","email":"pat@acme.com"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["queued"])

	resp, body = post(t, srv.URL+"/api/email-report", `{"token":"bogus","email":"pat@acme.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid token", body["error"])
}

func TestSEOKeywords(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := post(t, srv.URL+"/api/seo/keywords", `{"services":["Epoxy"],"city":"Madison, WI"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Madison", body["city"])
	assert.InDelta(t, 13, body["total"], 0.001)
}

func TestSEORankings(t *testing.T) {
	srv, _ := newTestServer(t, WithSEO(seo.NewAggregator(volumes{}, serp{})))

	resp, body := post(t, srv.URL+"/api/seo/rankings",
		`{"keywords":["epoxy flooring madison"],"businessPlaceId":"ChIJ1","city":"Madison","domain":"https://www.acme.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.InDelta(t, 1, body["totalKeywords"], 0.001)
	// volume 1000 at organic rank 3: 1000*0.447 - 1000*0.10 = 347
	assert.InDelta(t, 347, body["totalMissedLeads"], 0.001)
	assert.Equal(t, "epoxy flooring madison", body["topOpportunity"])
}

func TestSEOVolumes(t *testing.T) {
	srv, _ := newTestServer(t, WithSEO(seo.NewAggregator(volumes{}, serp{})))

	resp, body := post(t, srv.URL+"/api/seo/volumes", `{"keywords":["Epoxy Flooring Madison"],"city":"Madison"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"Epoxy Flooring Madison": float64(1000)}, body["volumes"])
}

func TestSEO_NotConfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := post(t, srv.URL+"/api/seo/rankings",
		`{"keywords":["a"],"businessPlaceId":"p","city":"Madison"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "seo provider not configured", body["error"])
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, WithCORSOrigins([]string{"https://quiz.example.com"}))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/quiz/submit", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://quiz.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "https://quiz.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

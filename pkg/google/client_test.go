package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.id")
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.websiteUri")

		var body textSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme Coatings Milwaukee", body.TextQuery)
		assert.Equal(t, "US", body.RegionCode)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{
			Places: []Place{
				{
					ID:               "ChIJ-acme",
					DisplayName:      DisplayName{Text: "Acme Coatings"},
					FormattedAddress: "123 Main St, Milwaukee, WI 53202, USA",
					WebsiteURI:       "https://acmecoatings.com",
					Rating:           4.7,
					UserRatingCount:  58,
					Location:         &LatLng{Latitude: 43.04, Longitude: -87.91},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Acme Coatings Milwaukee")

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	p := resp.Places[0]
	assert.Equal(t, "ChIJ-acme", p.ID)
	assert.Equal(t, "Acme Coatings", p.DisplayName.Text)
	assert.InDelta(t, 4.7, p.Rating, 0.001)
	assert.Equal(t, 58, p.UserRatingCount)
	require.NotNil(t, p.Location)
	assert.InDelta(t, 43.04, p.Location.Latitude, 0.001)
}

func TestTextSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{Places: nil})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Nonexistent Corp")

	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func TestTextSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "test query")

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.HTTPStatus())
}

func TestTextSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(ctx, "test")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestPlace_CityState(t *testing.T) {
	tests := []struct {
		addr, city, state string
	}{
		{"123 Main St, Milwaukee, WI 53202, USA", "Milwaukee", "WI"},
		{"N56 W123 Silver Spring Dr, Menomonee Falls, WI 53051", "Menomonee Falls", "WI"},
		{"De Pere, WI, USA", "De Pere", "WI"},
		{"Wisconsin", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		city, state := Place{FormattedAddress: tt.addr}.CityState()
		assert.Equal(t, tt.city, city, tt.addr)
		assert.Equal(t, tt.state, state, tt.addr)
	}
}

package token

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pipeline-score/internal/model"
)

func sampleSummary() model.ResultSummary {
	return model.ResultSummary{
		QuizID:      "qz_1a2b3c4d",
		Branch:      model.BranchOffer,
		Score:       87,
		Band:        model.BandGreen,
		ScoreBucket: "80-89",
		Forecast:    "60-day: 18-25 leads, 90-day: $122k-169k pipeline",
		TopActions:  []string{"Publish 6 city pages", "Add financing CTA + trust blocks"},
	}
}

func newCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	c, err := NewCodec(secret)
	require.NoError(t, err)
	return c
}

func TestSignVerify_RoundTrip(t *testing.T) {
	c := newCodec(t, "s3cret")
	tok, err := c.Sign(sampleSummary())
	require.NoError(t, err)

	got, ok := c.Verify(tok)
	require.True(t, ok)
	assert.Equal(t, sampleSummary(), got)
}

func TestSign_Structure(t *testing.T) {
	tok, err := newCodec(t, "s3cret").Sign(sampleSummary())
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.NotContains(t, p, "=")
	}

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"alg":"HS256","typ":"JWT"}`, string(header))

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"quizId": "qz_1a2b3c4d",
		"branch": "100k_offer",
		"score": 87,
		"band": "green",
		"scoreBucket": "80-89",
		"forecast": "60-day: 18-25 leads, 90-day: $122k-169k pipeline",
		"topMoves": ["Publish 6 city pages", "Add financing CTA + trust blocks"],
		"v": 1
	}`, string(payload))
}

func TestSign_NilActionsBecomeEmptyList(t *testing.T) {
	c := newCodec(t, "s3cret")
	s := sampleSummary()
	s.TopActions = nil

	tok, err := c.Sign(s)
	require.NoError(t, err)
	got, ok := c.Verify(tok)
	require.True(t, ok)
	assert.Equal(t, []string{}, got.TopActions)
}

func TestVerify_RejectsEveryBitFlip(t *testing.T) {
	c := newCodec(t, "s3cret")
	tok, err := c.Sign(sampleSummary())
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(tok)
			b[i] ^= 1 << bit
			_, ok := c.Verify(string(b))
			require.False(t, ok, "byte %d bit %d accepted", i, bit)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := newCodec(t, "one").Sign(sampleSummary())
	require.NoError(t, err)

	_, ok := newCodec(t, "two").Verify(tok)
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	c := newCodec(t, "s3cret")
	for _, raw := range []string{"", "a.b", "a.b.c", "not a token", "...", "a.b.c.d"} {
		_, ok := c.Verify(raw)
		assert.False(t, ok, raw)
	}
}

// signRaw signs arbitrary claims with the codec's secret.
func signRaw(t *testing.T, secret string, m jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, m).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestVerify_ShapeChecks(t *testing.T) {
	c := newCodec(t, "s3cret")
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing score", jwt.MapClaims{"topMoves": []string{}, "v": 1}},
		{"string score", jwt.MapClaims{"score": "90", "topMoves": []string{}, "v": 1}},
		{"missing moves", jwt.MapClaims{"score": 90, "v": 1}},
		{"moves not a list", jwt.MapClaims{"score": 90, "topMoves": "x", "v": 1}},
		{"unknown version", jwt.MapClaims{"score": 90, "topMoves": []string{}, "v": 2}},
		{"no version", jwt.MapClaims{"score": 90, "topMoves": []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.Verify(signRaw(t, "s3cret", tt.claims))
			assert.False(t, ok)
		})
	}

	_, ok := c.Verify(signRaw(t, "s3cret", jwt.MapClaims{"score": 90, "topMoves": []string{}, "v": 1}))
	assert.True(t, ok)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	c := newCodec(t, "s3cret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"score": 90, "topMoves": []string{}, "v": 1,
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, ok := c.Verify(tok)
	assert.False(t, ok)
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	assert.Error(t, err)
}

func TestBucket(t *testing.T) {
	tests := map[int]string{
		0:   "0-9",
		9:   "0-9",
		10:  "10-19",
		87:  "80-89",
		99:  "90-99",
		100: "100-100",
		110: "100-100",
		-5:  "0-9",
	}
	for score, want := range tests {
		assert.Equal(t, want, Bucket(score), "score %d", score)
	}
}

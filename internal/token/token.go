// Package token signs result summaries into stateless, URL-safe tokens so a
// scored result can be shown again without storing it.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/metrics"
	"github.com/sells-group/pipeline-score/internal/model"
)

// SchemaVersion is embedded in every payload as "v".
const SchemaVersion = 1

// claims is the token payload: the summary fields plus the schema marker.
// Registered claims are never set, so no expiry is enforced.
type claims struct {
	QuizID      string       `json:"quizId"`
	Branch      model.Branch `json:"branch"`
	Score       *int         `json:"score"`
	Band        model.Band   `json:"band"`
	ScoreBucket string       `json:"scoreBucket"`
	Forecast    string       `json:"forecast"`
	TopMoves    []string     `json:"topMoves"`
	V           int          `json:"v"`
	jwt.RegisteredClaims
}

// Validate is called by the parser after the signature check.
func (c claims) Validate() error {
	switch {
	case c.Score == nil:
		return eris.New("token: missing score")
	case c.TopMoves == nil:
		return eris.New("token: missing top moves")
	case c.V != SchemaVersion:
		return eris.Errorf("token: unknown schema version %d", c.V)
	}
	return nil
}

// Codec signs and verifies result tokens with HMAC-SHA256.
type Codec struct {
	secret []byte
	parser *jwt.Parser
}

// NewCodec creates a codec. The secret must not be empty; see ResolveSecret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, eris.New("token: empty secret")
	}
	return &Codec{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Sign encodes s as header.payload.mac.
func (c *Codec) Sign(s model.ResultSummary) (string, error) {
	moves := s.TopActions
	if moves == nil {
		moves = []string{}
	}
	score := s.Score

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		QuizID:      s.QuizID,
		Branch:      s.Branch,
		Score:       &score,
		Band:        s.Band,
		ScoreBucket: s.ScoreBucket,
		Forecast:    s.Forecast,
		TopMoves:    moves,
		V:           SchemaVersion,
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", eris.Wrap(err, "token: sign")
	}
	return signed, nil
}

// Verify returns the summary carried by raw. Any defect (bad MAC, bad
// encoding, bad JSON, missing fields, unknown version) yields false and
// nothing else.
func (c *Codec) Verify(raw string) (model.ResultSummary, bool) {
	var cl claims
	tok, err := c.parser.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		metrics.TokenVerifications.WithLabelValues(metrics.OutcomeError).Inc()
		zap.L().Debug("token: verification failed", zap.Error(err))
		return model.ResultSummary{}, false
	}
	metrics.TokenVerifications.WithLabelValues(metrics.OutcomeOK).Inc()

	return model.ResultSummary{
		QuizID:      cl.QuizID,
		Branch:      cl.Branch,
		Score:       *cl.Score,
		Band:        cl.Band,
		ScoreBucket: cl.ScoreBucket,
		Forecast:    cl.Forecast,
		TopActions:  cl.TopMoves,
	}, true
}

// Bucket maps a score to a coarse "floor-ceil" decade, e.g. 87 -> "80-89",
// clamped into [0,100].
func Bucket(score int) string {
	floor := (score / 10) * 10
	if score < 0 && score%10 != 0 {
		floor -= 10
	}
	floor = min(max(floor, 0), 100)
	ceil := min(floor+9, 100)
	return fmt.Sprintf("%d-%d", floor, ceil)
}

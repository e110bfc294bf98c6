// Package funnel runs the questionnaire flow: start, submit, result lookup
// and emailed reports.
package funnel

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/metrics"
	"github.com/sells-group/pipeline-score/internal/model"
	"github.com/sells-group/pipeline-score/internal/scorer"
	"github.com/sells-group/pipeline-score/internal/seo"
	"github.com/sells-group/pipeline-score/internal/sink"
	"github.com/sells-group/pipeline-score/internal/token"
	"github.com/sells-group/pipeline-score/pkg/google"
	"github.com/sells-group/pipeline-score/pkg/kit"
)

// QuizIDPrefix starts every quiz id.
const QuizIDPrefix = "qz_"

var (
	// ErrInvalidToken is returned for any result token that fails verification.
	ErrInvalidToken = eris.New("funnel: invalid token")
	// ErrMissingFields is returned when a submission lacks quiz id, email or answers.
	ErrMissingFields = eris.New("funnel: missing required fields: quizId, email, answers")
)

// SubmitRequest is a completed questionnaire.
type SubmitRequest struct {
	QuizID  string                      `json:"quizId"`
	Email   string                      `json:"email"`
	Answers *model.QuestionnaireAnswers `json:"answers"`
	UTM     model.UTM                   `json:"utm"`
	Consent bool                        `json:"consent"`
}

// SubmitResponse points the visitor at their result page.
type SubmitResponse struct {
	ResultToken string       `json:"resultToken"`
	ResultPath  string       `json:"resultPath"`
	Branch      model.Branch `json:"branch"`
}

// Funnel wires scoring, SEO enrichment, token signing and delivery.
type Funnel struct {
	engine *scorer.Engine
	codec  *token.Codec

	seo        *seo.Aggregator
	places     google.Client
	dispatcher *sink.Dispatcher
	kit        kit.Client
	kitFormID  string

	wg sync.WaitGroup
}

// Option configures optional collaborators.
type Option func(*Funnel)

// WithSEO enables keyword ranking enrichment for submissions with a listing.
func WithSEO(a *seo.Aggregator) Option {
	return func(f *Funnel) { f.seo = a }
}

// WithPlaces enables listing lookup for submissions without business data.
func WithPlaces(c google.Client) Option {
	return func(f *Funnel) { f.places = c }
}

// WithDispatcher enables CRM/ESP delivery after each submission.
func WithDispatcher(d *sink.Dispatcher) Option {
	return func(f *Funnel) { f.dispatcher = d }
}

// WithKit enables emailed reports through a Kit form.
func WithKit(c kit.Client, formID string) Option {
	return func(f *Funnel) {
		f.kit = c
		f.kitFormID = formID
	}
}

// New creates a funnel.
func New(engine *scorer.Engine, codec *token.Codec, opts ...Option) *Funnel {
	f := &Funnel{engine: engine, codec: codec}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Start issues a new quiz id.
func Start() string {
	id := uuid.New()
	return QuizIDPrefix + strings.ReplaceAll(id.String(), "-", "")[:8]
}

// Submit scores a questionnaire and returns its signed result location.
// Delivery to external systems continues in the background and never
// affects the response.
func (f *Funnel) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	if req.QuizID == "" || strings.TrimSpace(req.Email) == "" || req.Answers == nil {
		return SubmitResponse{}, ErrMissingFields
	}
	log := zap.L().With(zap.String("quiz_id", req.QuizID))

	answers := f.enrich(ctx, *req.Answers)

	result := f.engine.Score(answers)
	branch := model.BranchFor(result.Score)
	moves := result.TopActions
	if len(moves) > 3 {
		moves = moves[:3]
	}
	summary := model.ResultSummary{
		QuizID:      req.QuizID,
		Branch:      branch,
		Score:       result.Score,
		Band:        result.Band,
		ScoreBucket: token.Bucket(result.Score),
		Forecast:    result.Forecast,
		TopActions:  moves,
	}

	signed, err := f.codec.Sign(summary)
	if err != nil {
		return SubmitResponse{}, eris.Wrap(err, "funnel: sign result")
	}
	path := ResultPath(signed)

	metrics.Submissions.WithLabelValues(string(result.Band), string(branch)).Inc()
	log.Info("funnel: submission scored",
		zap.Int("score", result.Score),
		zap.String("band", string(result.Band)),
		zap.String("branch", string(branch)),
		zap.Bool("seo", answers.SEO != nil),
	)

	if f.dispatcher != nil {
		rec := sink.NewRecord(sink.Submission{
			Email:      req.Email,
			Answers:    answers,
			Result:     result,
			Summary:    summary,
			ResultPath: path,
			UTM:        req.UTM,
			Consent:    req.Consent,
		})
		f.dispatch(context.WithoutCancel(ctx), rec)
	}

	return SubmitResponse{ResultToken: signed, ResultPath: path, Branch: branch}, nil
}

// enrich attaches a looked-up listing and SEO intelligence when possible.
// SEO intelligence sent with the answers is recomputed from its rankings.
// Lookup failures leave the answers as they were.
func (f *Funnel) enrich(ctx context.Context, a model.QuestionnaireAnswers) model.QuestionnaireAnswers {
	if a.Business == nil && f.places != nil && a.BusinessName != "" {
		if bp, ok := f.lookupListing(ctx, a.BusinessName, a.City); ok {
			a = a.WithBusiness(bp)
		}
	}

	if a.SEO != nil {
		a = a.WithSEO(seo.Recompute(*a.SEO))
	} else if f.seo != nil && a.PlaceID() != "" {
		intel := f.seo.Aggregate(ctx, seo.Request{
			Keywords: seo.Keywords(a.Services, a.City),
			PlaceID:  a.PlaceID(),
			City:     a.City,
			Domain:   a.Website(),
			Services: a.Services,
		})
		a = a.WithSEO(intel)
	}
	return a
}

func (f *Funnel) lookupListing(ctx context.Context, name, city string) (model.BusinessProfile, bool) {
	resp, err := f.places.TextSearch(ctx, strings.TrimSpace(name+" "+city))
	if err != nil {
		zap.L().Warn("funnel: listing lookup failed", zap.String("business", name), zap.Error(err))
		return model.BusinessProfile{}, false
	}
	if len(resp.Places) == 0 {
		return model.BusinessProfile{HasListing: false, Name: name}, true
	}
	return ProfileFromPlace(resp.Places[0]), true
}

// ProfileFromPlace converts a map-service place into a business profile.
func ProfileFromPlace(p google.Place) model.BusinessProfile {
	city, state := p.CityState()
	bp := model.BusinessProfile{
		HasListing:  p.ID != "",
		Name:        p.DisplayName.Text,
		Address:     p.FormattedAddress,
		City:        city,
		State:       state,
		Rating:      p.Rating,
		ReviewCount: p.UserRatingCount,
		Phone:       p.NationalPhoneNumber,
		Website:     p.WebsiteURI,
		PlaceID:     p.ID,
	}
	if p.Location != nil {
		bp.Coordinates = &model.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	return bp
}

func (f *Funnel) dispatch(ctx context.Context, rec sink.Record) {
	f.wg.Add(1)
	metrics.SinksInFlight.Inc()
	go func() {
		defer f.wg.Done()
		defer metrics.SinksInFlight.Dec()
		f.dispatcher.Dispatch(ctx, rec)
	}()
}

// Wait blocks until background deliveries finish.
func (f *Funnel) Wait() {
	f.wg.Wait()
}

// Result verifies a result token.
func (f *Funnel) Result(raw string) (model.ResultSummary, error) {
	s, ok := f.codec.Verify(raw)
	if !ok {
		return model.ResultSummary{}, ErrInvalidToken
	}
	return s, nil
}

// EmailReport subscribes email to the report form with the token's summary.
// It reports false when Kit is not configured or rejects the subscription.
func (f *Funnel) EmailReport(ctx context.Context, raw, email string) (bool, error) {
	s, err := f.Result(raw)
	if err != nil {
		return false, err
	}
	if f.kit == nil {
		return false, nil
	}

	move := func(i int) string {
		if i < len(s.TopActions) {
			return s.TopActions[i]
		}
		return ""
	}
	_, err = f.kit.SubscribeToForm(ctx, f.kitFormID, kit.Subscriber{
		EmailAddress: strings.TrimSpace(email),
		Fields: map[string]string{
			"pipeline_score": strconv.Itoa(s.Score),
			"score_bucket":   s.ScoreBucket,
			"top_move_1":     move(0),
			"top_move_2":     move(1),
			"top_move_3":     move(2),
			"result_url":     ResultPath(raw),
		},
	})
	metrics.SinkDeliveries.WithLabelValues("kit_report", metrics.Outcome(err)).Inc()
	if err != nil {
		zap.L().Warn("funnel: email report failed", zap.String("quiz_id", s.QuizID), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// ResultPath is the shareable result page for a token.
func ResultPath(tok string) string {
	return "/r/" + url.PathEscape(tok)
}

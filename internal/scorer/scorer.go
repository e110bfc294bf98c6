// Package scorer turns questionnaire answers into a readiness score, band,
// forecast and the next moves a contractor should make.
package scorer

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/pipeline-score/internal/estimate"
	"github.com/sells-group/pipeline-score/internal/model"
)

// MaxScore is the upper clamp. The point table can reach 110.
const MaxScore = 100

// Component names, in display order.
const (
	ComponentResponse = "response_speed"
	ComponentSMS      = "sms"
	ComponentReviews  = "reviews"
	ComponentPages    = "service_pages"
	ComponentZoneFit  = "zone_fit"
	ComponentListing  = "listing_seo"
)

// Components lists component names in display order.
var Components = []string{
	ComponentResponse, ComponentSMS, ComponentReviews,
	ComponentPages, ComponentZoneFit, ComponentListing,
}

// Engine scores answers. The zero value is not usable; call New.
type Engine struct {
	tickets *estimate.Tickets
}

// New creates an engine that prices forecasts with tickets. A nil table
// uses the built-in metros.
func New(tickets *estimate.Tickets) *Engine {
	if tickets == nil {
		tickets = estimate.NewTickets(estimate.Metros, 0)
	}
	return &Engine{tickets: tickets}
}

// Score computes the full result. It is total and deterministic.
func (e *Engine) Score(a model.QuestionnaireAnswers) model.ScoreResult {
	score := Total(ComponentScores(a))
	return model.ScoreResult{
		Score:           score,
		Band:            model.BandFor(score),
		Forecast:        estimate.Forecast(score, e.tickets.For(a.City), a.SEO),
		GuaranteeStatus: Guarantee(a),
		TopActions:      TopActions(a),
	}
}

// Projection returns the structured forecast behind Score's string.
func (e *Engine) Projection(a model.QuestionnaireAnswers, score int) estimate.Projection {
	return estimate.Project(score, e.tickets.For(a.City), a.SEO)
}

// ComponentScores returns the unrounded points earned per component.
func ComponentScores(a model.QuestionnaireAnswers) map[string]float64 {
	return map[string]float64{
		ComponentResponse: responsePoints(a.ResponseTime),
		ComponentSMS:      smsPoints(a.SMSCapability),
		ComponentReviews:  reviewPoints(a.ReviewCount),
		ComponentPages:    pagePoints(a.PremiumPages),
		ComponentZoneFit:  zoneFitPoints(a.Services, a.Radius),
		ComponentListing:  listingPoints(a),
	}
}

// Total sums components, rounds to the nearest integer and clamps to
// [0, MaxScore].
func Total(components map[string]float64) int {
	sum := 0.0
	for _, name := range Components {
		sum += components[name]
	}
	score := int(math.Round(sum))
	return min(max(score, 0), MaxScore)
}

func responsePoints(minutes int) float64 {
	switch {
	case minutes <= 15:
		return 30
	case minutes <= 60:
		return 20
	case minutes <= 1440:
		return 10
	default:
		return 0
	}
}

func smsPoints(c model.SMSCapability) float64 {
	if c == model.SMSBoth {
		return 5
	}
	return 0
}

// reviewPoints scores reviews in the last 60 days. Unknown scores nothing.
func reviewPoints(n int) float64 {
	switch {
	case n >= 8:
		return 20
	case n >= 4:
		return 15
	case n >= 1:
		return 10
	default:
		return 0
	}
}

func pagePoints(p model.PageCoverage) float64 {
	switch p {
	case model.PagesAll:
		return 20
	case model.PagesSome:
		return 12
	default:
		return 0
	}
}

func zoneFitPoints(services []string, radius int) float64 {
	mult := 1.0
	if radius >= 30 {
		mult = 1.2
	}
	return math.Min(20, float64(serviceCount(services))*7*mult)
}

// serviceCount counts distinct non-blank services.
func serviceCount(services []string) int {
	seen := make(map[string]bool, len(services))
	for _, s := range services {
		if k := strings.ToLower(strings.TrimSpace(s)); k != "" {
			seen[k] = true
		}
	}
	return len(seen)
}

func listingPoints(a model.QuestionnaireAnswers) float64 {
	if !a.HasListing() {
		return 3
	}
	pts := 6.0
	if a.SEO == nil {
		return pts
	}
	switch {
	case a.SEO.MapPackCount() >= 2:
		pts += 9
	case a.SEO.MapPackCount() >= 1:
		pts += 6
	case a.SEO.OrganicWithin(3) >= 2:
		pts += 3
	}
	if a.SEO.TotalMissedLeads > 200 {
		pts -= 3
	}
	return pts
}

// Move texts, by priority.
const (
	MoveSMS       = "Turn on missed-call text-back + SMS autoresponder"
	MovePages     = "Ship Polyurea/Decorative/Epoxy pages"
	MoveReviews   = "Run 40-review sprint with job-type tags"
	MoveCityPages = "Publish 6 city pages"
	MoveListing   = "GBP cleanup (categories/services/posts/Q&A/photos)"
	MoveFinancing = "Add financing CTA + trust blocks"
	MoveTracking  = "Turn on tracking (call numbers, UTMs, source tracking)"
)

type move struct {
	text     string
	priority int
}

// TopActions returns up to three recommended moves, most urgent first.
func TopActions(a model.QuestionnaireAnswers) []string {
	var moves []move
	if a.ResponseTime > 15 || a.SMSCapability != model.SMSBoth {
		moves = append(moves, move{MoveSMS, 1})
	}
	if a.PremiumPages != model.PagesAll {
		moves = append(moves, move{MovePages, 2})
	}
	if a.ReviewCount <= 7 {
		moves = append(moves, move{MoveReviews, 3})
	}
	if a.Radius < 30 || serviceCount(a.Services) == 1 {
		moves = append(moves, move{MoveCityPages, 4})
	}
	moves = append(moves,
		move{MoveListing, 5},
		move{MoveFinancing, 6},
		move{MoveTracking, 7},
	)

	sort.SliceStable(moves, func(i, j int) bool { return moves[i].priority < moves[j].priority })

	out := make([]string, 0, 3)
	for _, m := range moves[:3] {
		out = append(out, m.text)
	}
	return out
}

// Guarantee messages.
const (
	GuaranteeEligible = "Eligible for 30-day lead guarantee"
	GuaranteeBaseline = "Baseline service package recommended"
)

// Guarantee reports whether the contractor qualifies for the lead guarantee:
// responds within an hour, has at least 4 recent reviews and some service pages.
func Guarantee(a model.QuestionnaireAnswers) string {
	if a.ResponseTime <= 60 && a.ReviewCount >= 4 && a.PremiumPages != model.PagesNone {
		return GuaranteeEligible
	}
	return GuaranteeBaseline
}

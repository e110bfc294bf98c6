// Package estimate projects leads and pipeline value from a readiness score.
package estimate

import (
	"fmt"
	"math"

	"github.com/sells-group/pipeline-score/internal/model"
)

const (
	opportunityRate    = 0.6  // lead -> qualified opportunity
	pipelineMultiplier = 1.5  // 90-day deal-cycle overlap
	missedToLeadRate   = 0.02 // missed clicks -> leads
)

// Range is an inclusive low-high pair.
type Range struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Projection is the structured form of a forecast. Pipeline is in dollars.
type Projection struct {
	Leads      Range   `json:"leads"`
	Pipeline   Range   `json:"pipeline"`
	Multiplier float64 `json:"multiplier"`
	Bonus      float64 `json:"bonus"`
}

// String renders the projection, e.g.
// "60-day: 2-6 leads, 90-day: $14k-41k pipeline".
func (p Projection) String() string {
	return fmt.Sprintf("60-day: %d-%d leads, 90-day: $%dk-%dk pipeline",
		p.Leads.Low, p.Leads.High, thousands(p.Pipeline.Low), thousands(p.Pipeline.High))
}

// baseLeads is the 60-day lead range by score band.
func baseLeads(score int) Range {
	switch model.BandFor(score) {
	case model.BandGreen:
		return Range{18, 25}
	case model.BandYellow:
		return Range{12, 18}
	case model.BandOrange:
		return Range{6, 12}
	default:
		return Range{2, 6}
	}
}

// seoBoost returns the lead multiplier and additive bonus earned by the
// visibility gap. Without missed leads there is nothing to adjust.
func seoBoost(score int, seo *model.SEOIntelligence) (float64, float64) {
	if seo == nil || seo.TotalMissedLeads <= 0 {
		return 1, 0
	}

	total := seo.TotalMissedLeads
	potential := math.Round(float64(total) * missedToLeadRate)

	var mult, bonus float64
	switch {
	case total > 5000:
		mult, bonus = 1.4, math.Min(0.3*potential, 8)
	case total > 2000:
		mult, bonus = 1.25, math.Min(0.25*potential, 5)
	case total > 500:
		mult, bonus = 1.15, math.Min(0.2*potential, 3)
	default:
		mult, bonus = 1.05, 1
	}

	if seo.OrganicWithin(10) > 3 {
		mult = math.Max(mult-0.1, 1.05)
	}
	switch {
	case score < 55:
		mult = math.Min(mult*1.2, 1.5)
	case score > 85:
		mult = math.Min(mult, 1.2)
	}
	return mult, bonus
}

// Project computes the lead and pipeline ranges for a score. seo may be nil.
func Project(score int, avgTicket float64, seo *model.SEOIntelligence) Projection {
	base := baseLeads(score)
	mult, bonus := seoBoost(score, seo)

	leads := Range{
		Low:  int(math.Round(float64(base.Low)*mult + bonus)),
		High: int(math.Round(float64(base.High)*mult + bonus)),
	}
	return Projection{
		Leads:      leads,
		Pipeline:   Range{Low: pipeline(leads.Low, avgTicket), High: pipeline(leads.High, avgTicket)},
		Multiplier: mult,
		Bonus:      bonus,
	}
}

// Forecast renders Project as a display string.
func Forecast(score int, avgTicket float64, seo *model.SEOIntelligence) string {
	return Project(score, avgTicket, seo).String()
}

func pipeline(leads int, avgTicket float64) int {
	return int(math.Round(float64(leads) * opportunityRate * avgTicket * pipelineMultiplier))
}

// thousands rounds dollars to the nearest thousand, halves away from zero.
func thousands(dollars int) int {
	return int(math.Round(float64(dollars) / 1000))
}

// FormatRevenue formats a dollar amount in human-readable form.
func FormatRevenue(amount int64) string {
	switch {
	case amount >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", float64(amount)/1_000_000_000)
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(amount)/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", float64(amount)/1_000)
	default:
		return fmt.Sprintf("$%d", amount)
	}
}

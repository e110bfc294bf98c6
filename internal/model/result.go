package model

// Band is one of four ordered readiness tiers.
type Band string

const (
	BandRed    Band = "red"
	BandOrange Band = "orange"
	BandYellow Band = "yellow"
	BandGreen  Band = "green"
)

// Band thresholds (inclusive lower bounds).
const (
	GreenThreshold  = 85
	YellowThreshold = 70
	OrangeThreshold = 55
)

// BandFor maps a score to its band.
func BandFor(score int) Band {
	switch {
	case score >= GreenThreshold:
		return BandGreen
	case score >= YellowThreshold:
		return BandYellow
	case score >= OrangeThreshold:
		return BandOrange
	default:
		return BandRed
	}
}

// Rank orders bands from red (0) to green (3).
func (b Band) Rank() int {
	switch b {
	case BandGreen:
		return 3
	case BandYellow:
		return 2
	case BandOrange:
		return 1
	default:
		return 0
	}
}

// Branch is the follow-up offer a submission is routed to.
type Branch string

const (
	BranchOffer   Branch = "100k_offer"
	BranchSub100k Branch = "sub100k"
)

// BranchFor routes strong scores to the full offer.
func BranchFor(score int) Branch {
	if score >= YellowThreshold {
		return BranchOffer
	}
	return BranchSub100k
}

// ScoreResult is the output of the scoring engine.
type ScoreResult struct {
	Score           int      `json:"score" yaml:"score"`
	Band            Band     `json:"band" yaml:"band"`
	Forecast        string   `json:"forecast" yaml:"forecast"`
	GuaranteeStatus string   `json:"guaranteeStatus" yaml:"guaranteeStatus"`
	TopActions      []string `json:"topMoves" yaml:"topMoves"`
}

// ResultSummary is the PII-free projection of a submission carried in a
// result token.
type ResultSummary struct {
	QuizID      string   `json:"quizId"`
	Branch      Branch   `json:"branch"`
	Score       int      `json:"score"`
	Band        Band     `json:"band"`
	ScoreBucket string   `json:"scoreBucket"`
	Forecast    string   `json:"forecast"`
	TopActions  []string `json:"topMoves"`
}

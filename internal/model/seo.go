package model

// KeywordPriority ranks a keyword for sales follow-up.
type KeywordPriority string

const (
	PriorityHigh   KeywordPriority = "high"
	PriorityMedium KeywordPriority = "medium"
	PriorityLow    KeywordPriority = "low"
)

// SEORanking is the evaluation of one keyword for one business.
type SEORanking struct {
	Keyword             string          `json:"keyword"`
	SearchVolume        int             `json:"searchVolume"`
	CurrentRank         *int            `json:"currentRank"`     // organic 1-10, nil = unranked
	MapPackPosition     *int            `json:"mapPackPosition"` // 1-3, nil = not in pack
	MissedLeadsPerMonth int             `json:"missedLeadsPerMonth"`
	IsServiceKeyword    bool            `json:"isServiceKeyword"`
	Priority            KeywordPriority `json:"priority,omitempty"`
}

// InMapPack reports whether the business holds a map-pack slot for the keyword.
func (r SEORanking) InMapPack() bool {
	return r.MapPackPosition != nil
}

// RanksOrganicWithin reports whether the organic rank is within the top n.
func (r SEORanking) RanksOrganicWithin(n int) bool {
	return r.CurrentRank != nil && *r.CurrentRank <= n
}

// SEOIntelligence aggregates a set of keyword rankings. Build it with
// seo.Summarize so TotalMissedLeads and TopOpportunity stay consistent with
// Rankings.
type SEOIntelligence struct {
	Rankings         []SEORanking `json:"rankings"`
	TotalMissedLeads int          `json:"totalMissedLeads"`
	TopOpportunity   string       `json:"topOpportunity"`
}

// MapPackCount returns the number of keywords with a map-pack slot.
func (s SEOIntelligence) MapPackCount() int {
	n := 0
	for _, r := range s.Rankings {
		if r.InMapPack() {
			n++
		}
	}
	return n
}

// OrganicWithin returns the number of keywords ranking organically in the top n.
func (s SEOIntelligence) OrganicWithin(n int) int {
	c := 0
	for _, r := range s.Rankings {
		if r.RanksOrganicWithin(n) {
			c++
		}
	}
	return c
}

// IntPtr returns a pointer to v. Handy for optional ranks.
func IntPtr(v int) *int {
	return &v
}

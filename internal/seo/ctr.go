// Package seo estimates how many leads a business loses to weak search
// visibility and aggregates per-keyword rankings into SEO intelligence.
package seo

import (
	"math"

	"github.com/sells-group/pipeline-score/internal/model"
)

// Expected click-through rate by organic rank 1-10.
var organicCTR = [...]float64{0.284, 0.152, 0.099, 0.067, 0.051, 0.041, 0.034, 0.028, 0.025, 0.022}

// Expected click-through rate by local map-pack position 1-3.
var mapPackCTR = [...]float64{0.446, 0.156, 0.098}

// MaxOrganicRank is the deepest tracked organic position.
const MaxOrganicRank = len(organicCTR)

// MaxMapPackPosition is the deepest tracked map-pack position.
const MaxMapPackPosition = len(mapPackCTR)

// OrganicCTR returns the expected CTR at an organic rank, or 0 when untracked.
func OrganicCTR(rank int) float64 {
	if rank < 1 || rank > MaxOrganicRank {
		return 0
	}
	return organicCTR[rank-1]
}

// MapPackCTR returns the expected CTR at a map-pack position, or 0 when untracked.
func MapPackCTR(pos int) float64 {
	if pos < 1 || pos > MaxMapPackPosition {
		return 0
	}
	return mapPackCTR[pos-1]
}

// BestCTR is the CTR of the best achievable slot, map-pack position 1.
func BestCTR() float64 {
	return mapPackCTR[0]
}

// MissedLeads estimates monthly clicks lost between the current standing and
// map-pack position 1. A map-pack slot takes precedence over the organic rank.
// Positions outside the tracked ranges count as unranked.
func MissedLeads(volume int, rank, mapPos *int) int {
	if volume <= 0 {
		return 0
	}
	v := float64(volume)

	current := 0.0
	switch {
	case mapPos != nil && MapPackCTR(*mapPos) > 0:
		current = v * MapPackCTR(*mapPos)
	case rank != nil && OrganicCTR(*rank) > 0:
		current = v * OrganicCTR(*rank)
	}

	missed := math.Round(v*BestCTR() - current)
	if missed < 0 {
		return 0
	}
	return int(missed)
}

// Summarize folds rankings into SEO intelligence. The input slice is copied.
// TopOpportunity is the first keyword with the highest positive miss, or
// empty when nothing is being missed.
func Summarize(rankings []model.SEORanking) model.SEOIntelligence {
	out := model.SEOIntelligence{
		Rankings: append([]model.SEORanking(nil), rankings...),
	}
	best := 0
	for _, r := range out.Rankings {
		out.TotalMissedLeads += r.MissedLeadsPerMonth
		if r.MissedLeadsPerMonth > best {
			best = r.MissedLeadsPerMonth
			out.TopOpportunity = r.Keyword
		}
	}
	if out.Rankings == nil {
		out.Rankings = []model.SEORanking{}
	}
	return out
}

// Recompute rebuilds every derived field of intel from its rankings: each
// row's missed leads from volume and positions, then the totals. Caller
// supplied totals are discarded.
func Recompute(intel model.SEOIntelligence) model.SEOIntelligence {
	rows := append([]model.SEORanking(nil), intel.Rankings...)
	for i, r := range rows {
		rows[i].MissedLeadsPerMonth = MissedLeads(r.SearchVolume, r.CurrentRank, r.MapPackPosition)
	}
	return Summarize(rows)
}

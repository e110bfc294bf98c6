package seo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/pipeline-score/internal/model"
)

func TestMissedLeads_RankThree(t *testing.T) {
	assert.Equal(t, 347, MissedLeads(1000, model.IntPtr(3), nil))
}

func TestMissedLeads_BestPositionIsZero(t *testing.T) {
	assert.Equal(t, 0, MissedLeads(1000, nil, model.IntPtr(1)))
	assert.Equal(t, 0, MissedLeads(1000, model.IntPtr(1), model.IntPtr(1)))
}

func TestMissedLeads_Unranked(t *testing.T) {
	assert.Equal(t, 446, MissedLeads(1000, nil, nil))
	assert.Equal(t, 446, MissedLeads(1000, model.IntPtr(11), model.IntPtr(4)))
	assert.Equal(t, 446, MissedLeads(1000, model.IntPtr(0), nil))
}

func TestMissedLeads_ZeroVolume(t *testing.T) {
	assert.Equal(t, 0, MissedLeads(0, nil, nil))
	assert.Equal(t, 0, MissedLeads(-5, nil, nil))
}

func TestMissedLeads_MapPackBeatsOrganic(t *testing.T) {
	// Map-pack 2 (15.6%) is used even though organic 1 (28.4%) is better.
	assert.Equal(t, 290, MissedLeads(1000, model.IntPtr(1), model.IntPtr(2)))
}

func TestMissedLeads_MonotonicInRank(t *testing.T) {
	for _, vol := range []int{10, 90, 1000, 12345} {
		prev := MissedLeads(vol, nil, nil)
		for rank := MaxOrganicRank; rank >= 1; rank-- {
			got := MissedLeads(vol, model.IntPtr(rank), nil)
			assert.LessOrEqual(t, got, prev, "volume %d rank %d", vol, rank)
			prev = got
		}
		prev = MissedLeads(vol, nil, nil)
		for pos := MaxMapPackPosition; pos >= 1; pos-- {
			got := MissedLeads(vol, nil, model.IntPtr(pos))
			assert.LessOrEqual(t, got, prev, "volume %d map-pack %d", vol, pos)
			prev = got
		}
		assert.Equal(t, 0, prev)
	}
}

func TestCTRTables(t *testing.T) {
	assert.InDelta(t, 0.284, OrganicCTR(1), 1e-9)
	assert.InDelta(t, 0.022, OrganicCTR(10), 1e-9)
	assert.Zero(t, OrganicCTR(11))
	assert.InDelta(t, 0.446, MapPackCTR(1), 1e-9)
	assert.Zero(t, MapPackCTR(0))
	assert.InDelta(t, 0.446, BestCTR(), 1e-9)
}

func TestSummarize(t *testing.T) {
	rankings := []model.SEORanking{
		{Keyword: "a", MissedLeadsPerMonth: 40},
		{Keyword: "b", MissedLeadsPerMonth: 90},
		{Keyword: "c", MissedLeadsPerMonth: 90},
	}
	intel := Summarize(rankings)

	assert.Equal(t, 220, intel.TotalMissedLeads)
	assert.Equal(t, "b", intel.TopOpportunity)

	rankings[0].Keyword = "changed"
	assert.Equal(t, "a", intel.Rankings[0].Keyword)
}

func TestSummarize_Empty(t *testing.T) {
	intel := Summarize(nil)
	assert.NotNil(t, intel.Rankings)
	assert.Empty(t, intel.Rankings)
	assert.Zero(t, intel.TotalMissedLeads)
	assert.Empty(t, intel.TopOpportunity)

	intel = Summarize([]model.SEORanking{{Keyword: "a"}})
	assert.Empty(t, intel.TopOpportunity)
}

func TestRecompute_DiscardsSuppliedTotals(t *testing.T) {
	in := model.SEOIntelligence{
		Rankings: []model.SEORanking{
			{Keyword: "epoxy flooring milwaukee", SearchVolume: 1000, MapPackPosition: model.IntPtr(1), MissedLeadsPerMonth: 500},
			{Keyword: "garage floor coating milwaukee", SearchVolume: 1000, CurrentRank: model.IntPtr(3)},
		},
		TotalMissedLeads: 9000,
		TopOpportunity:   "made up",
	}

	got := Recompute(in)
	assert.Equal(t, 0, got.Rankings[0].MissedLeadsPerMonth)
	assert.Equal(t, 347, got.Rankings[1].MissedLeadsPerMonth)
	assert.Equal(t, 347, got.TotalMissedLeads)
	assert.Equal(t, "garage floor coating milwaukee", got.TopOpportunity)
	assert.Equal(t, 500, in.Rankings[0].MissedLeadsPerMonth)
}

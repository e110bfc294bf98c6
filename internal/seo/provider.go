package seo

import (
	"context"
	"time"

	"github.com/sells-group/pipeline-score/internal/metrics"
	"github.com/sells-group/pipeline-score/internal/resilience"
	"github.com/sells-group/pipeline-score/pkg/dataforseo"
)

// VolumeProvider returns monthly search volume per keyword for a location.
// Keywords missing from the result have no known volume.
type VolumeProvider interface {
	Volumes(ctx context.Context, keywords []string, location int) (map[string]int, error)
}

// SERPProvider returns the results page of one keyword at a location.
type SERPProvider interface {
	SERP(ctx context.Context, keyword string, location int) (*SERP, error)
}

// OrganicResult is one organic listing.
type OrganicResult struct {
	Domain string
	Rank   int // absolute position on the page
}

// MapPackEntry is one entry of the local map-pack.
type MapPackEntry struct {
	PlaceID  string
	Position int // 1-based
}

// SERP is the part of a results page the aggregator matches against.
type SERP struct {
	Organic []OrganicResult
	MapPack []MapPackEntry
}

// DataForSEO adapts a dataforseo.Client to the provider interfaces. Every
// call is retried on transient errors and guarded by a per-endpoint breaker.
type DataForSEO struct {
	client   dataforseo.Client
	policy   resilience.Policy
	breakers *resilience.Breakers
	country  string
}

// ProviderOption configures a DataForSEO provider.
type ProviderOption func(*DataForSEO)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p resilience.Policy) ProviderOption {
	return func(d *DataForSEO) { d.policy = p }
}

// WithBreakers shares a breaker set, e.g. to expose breaker states.
func WithBreakers(bs *resilience.Breakers) ProviderOption {
	return func(d *DataForSEO) { d.breakers = bs }
}

// WithCountry sets the ISO country whose locations are listed. Default "US".
func WithCountry(iso string) ProviderOption {
	return func(d *DataForSEO) { d.country = iso }
}

// NewDataForSEO wraps client.
func NewDataForSEO(client dataforseo.Client, opts ...ProviderOption) *DataForSEO {
	d := &DataForSEO{
		client:  client,
		policy:  resilience.DefaultPolicy(),
		country: "US",
	}
	for _, o := range opts {
		o(d)
	}
	if d.breakers == nil {
		d.breakers = resilience.NewBreakers(resilience.BreakerConfig{})
	}
	return d
}

// Breakers exposes the breaker set.
func (d *DataForSEO) Breakers() *resilience.Breakers {
	return d.breakers
}

func call[T any](ctx context.Context, d *DataForSEO, kind string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := resilience.Guard(ctx, d.breakers.Get(kind), func(ctx context.Context) (T, error) {
		return resilience.Retry(ctx, d.policy, "dataforseo."+kind, fn)
	})
	metrics.ObserveLookup(kind, start, err)
	return v, err
}

// Volumes implements VolumeProvider. Result keys are case-folded.
func (d *DataForSEO) Volumes(ctx context.Context, keywords []string, location int) (map[string]int, error) {
	res, err := call(ctx, d, "volume", func(ctx context.Context) ([]dataforseo.SearchVolumeResult, error) {
		return d.client.SearchVolume(ctx, dataforseo.SearchVolumeRequest{
			Keywords:     keywords,
			LocationCode: location,
		})
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(res))
	for _, r := range res {
		if r.SearchVolume != nil {
			out[foldCase(r.Keyword)] = *r.SearchVolume
		}
	}
	return out, nil
}

// SERP implements SERPProvider.
func (d *DataForSEO) SERP(ctx context.Context, keyword string, location int) (*SERP, error) {
	res, err := call(ctx, d, "serp", func(ctx context.Context) (*dataforseo.SERPResult, error) {
		return d.client.SERP(ctx, dataforseo.SERPRequest{
			Keyword:      keyword,
			LocationCode: location,
		})
	})
	if err != nil {
		return nil, err
	}
	return fromItems(res.Items), nil
}

// fromItems flattens provider items. A "map" block nests its entries; bare
// "local_pack" items are entries in page order.
func fromItems(items []dataforseo.SERPItem) *SERP {
	s := &SERP{}
	for _, it := range items {
		switch it.Type {
		case "organic":
			s.Organic = append(s.Organic, OrganicResult{Domain: it.Domain, Rank: it.RankAbsolute})
		case "map":
			for i, e := range it.Items {
				s.MapPack = append(s.MapPack, MapPackEntry{PlaceID: e.PlaceID, Position: i + 1})
			}
		case "local_pack":
			pos := it.RankGroup
			if pos <= 0 {
				pos = len(s.MapPack) + 1
			}
			s.MapPack = append(s.MapPack, MapPackEntry{PlaceID: it.PlaceID, Position: pos})
		}
	}
	return s
}

// Locations implements LocationLister.
func (d *DataForSEO) Locations(ctx context.Context) ([]Location, error) {
	res, err := call(ctx, d, "location", func(ctx context.Context) ([]dataforseo.Location, error) {
		return d.client.Locations(ctx, d.country)
	})
	if err != nil {
		return nil, err
	}

	out := make([]Location, 0, len(res))
	for _, l := range res {
		out = append(out, Location{Code: l.LocationCode, Name: l.LocationName, Type: l.LocationType})
	}
	return out, nil
}

package seo

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/pipeline-score/internal/model"
)

const (
	defaultConcurrency   = 5
	defaultLookupTimeout = 10 * time.Second
	defaultVolumeTimeout = 15 * time.Second
)

// Request describes one business to evaluate.
type Request struct {
	Keywords []string
	PlaceID  string
	City     string
	Domain   string   // website or bare domain; empty disables organic matching
	Services []string // used for keyword priority only
}

// Aggregator evaluates a keyword batch for one business. Provider failures
// never fail the batch: a failed volume lookup zeroes every volume and a
// failed or timed out SERP lookup leaves that keyword unranked.
type Aggregator struct {
	volumes   VolumeProvider
	serp      SERPProvider
	locations LocationResolver

	concurrency   int
	lookupTimeout time.Duration
	volumeTimeout time.Duration
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency caps in-flight SERP lookups per batch.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLookupTimeout bounds each SERP lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.lookupTimeout = d
		}
	}
}

// WithVolumeTimeout bounds the batched volume lookup.
func WithVolumeTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.volumeTimeout = d
		}
	}
}

// WithLocationResolver sets the city resolver. Default is the national code.
func WithLocationResolver(r LocationResolver) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.locations = r
		}
	}
}

// NewAggregator creates an aggregator over the given providers.
func NewAggregator(volumes VolumeProvider, serp SERPProvider, opts ...Option) *Aggregator {
	a := &Aggregator{
		volumes:       volumes,
		serp:          serp,
		locations:     StaticResolver(DefaultLocationCode),
		concurrency:   defaultConcurrency,
		lookupTimeout: defaultLookupTimeout,
		volumeTimeout: defaultVolumeTimeout,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

type standing struct {
	rank   *int
	mapPos *int
}

// Aggregate evaluates req.Keywords and returns the summarised rankings in
// input order.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) model.SEOIntelligence {
	if len(req.Keywords) == 0 {
		return Summarize(nil)
	}

	log := zap.L().With(zap.String("city", req.City), zap.Int("keywords", len(req.Keywords)))
	location := a.locations.Resolve(ctx, req.City)
	domain := NormalizeDomain(req.Domain)

	volCh := make(chan map[string]int, 1)
	go func() {
		vctx, cancel := context.WithTimeout(ctx, a.volumeTimeout)
		defer cancel()
		v, err := a.volumes.Volumes(vctx, req.Keywords, location)
		if err != nil {
			log.Warn("seo: volume lookup failed, using zero volumes", zap.Error(err))
		}
		volCh <- v
	}()

	standings := make([]standing, len(req.Keywords))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, kw := range req.Keywords {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, a.lookupTimeout)
			defer cancel()
			page, err := a.serp.SERP(lctx, kw, location)
			if err != nil {
				log.Warn("seo: serp lookup failed, keyword left unranked",
					zap.String("keyword", kw), zap.Error(err))
				return nil
			}
			standings[i] = match(page, domain, req.PlaceID)
			return nil
		})
	}
	_ = g.Wait()
	volumes := <-volCh

	rankings := make([]model.SEORanking, len(req.Keywords))
	for i, kw := range req.Keywords {
		vol := volumes[foldCase(kw)]
		st := standings[i]
		rankings[i] = model.SEORanking{
			Keyword:             kw,
			SearchVolume:        vol,
			CurrentRank:         st.rank,
			MapPackPosition:     st.mapPos,
			MissedLeadsPerMonth: MissedLeads(vol, st.rank, st.mapPos),
			IsServiceKeyword:    IsServiceKeyword(kw),
			Priority:            Priority(kw, req.Services, vol),
		}
	}

	intel := Summarize(rankings)
	log.Info("seo: aggregated rankings",
		zap.Int("location_code", location),
		zap.Int("map_pack", intel.MapPackCount()),
		zap.Int("total_missed_leads", intel.TotalMissedLeads),
	)
	return intel
}

// Volumes looks up monthly search volumes for keywords in city, keyed by the
// keywords as given. Keywords the provider does not know map to zero.
func (a *Aggregator) Volumes(ctx context.Context, keywords []string, city string) (map[string]int, error) {
	location := a.locations.Resolve(ctx, city)

	vctx, cancel := context.WithTimeout(ctx, a.volumeTimeout)
	defer cancel()
	folded, err := a.volumes.Volumes(vctx, keywords, location)
	if err != nil {
		return nil, eris.Wrap(err, "seo: volumes")
	}

	out := make(map[string]int, len(keywords))
	for _, kw := range keywords {
		out[kw] = folded[foldCase(kw)]
	}
	return out, nil
}

// match finds the business on a results page. The best organic rank within
// the tracked range and the first matching map-pack entry win.
func match(page *SERP, domain, placeID string) standing {
	var st standing
	if page == nil {
		return st
	}

	if domain != "" {
		for _, r := range page.Organic {
			if r.Rank < 1 || r.Rank > MaxOrganicRank || !sameSite(NormalizeDomain(r.Domain), domain) {
				continue
			}
			if st.rank == nil || r.Rank < *st.rank {
				st.rank = model.IntPtr(r.Rank)
			}
		}
	}

	if placeID != "" {
		for _, e := range page.MapPack {
			if e.PlaceID == placeID && e.Position >= 1 && e.Position <= MaxMapPackPosition {
				st.mapPos = model.IntPtr(e.Position)
				break
			}
		}
	}
	return st
}

// sameSite reports whether host is domain or one of its subdomains.
func sameSite(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// NormalizeDomain reduces a URL or host to a bare lowercase host without
// scheme, path, port or leading "www.".
func NormalizeDomain(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, ".")
}

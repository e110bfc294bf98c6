package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/estimate"
	"github.com/sells-group/pipeline-score/internal/funnel"
	"github.com/sells-group/pipeline-score/internal/resilience"
	"github.com/sells-group/pipeline-score/internal/scorer"
	"github.com/sells-group/pipeline-score/internal/seo"
	"github.com/sells-group/pipeline-score/internal/sink"
	"github.com/sells-group/pipeline-score/internal/token"
	"github.com/sells-group/pipeline-score/pkg/closecrm"
	"github.com/sells-group/pipeline-score/pkg/dataforseo"
	"github.com/sells-group/pipeline-score/pkg/google"
	"github.com/sells-group/pipeline-score/pkg/kit"
)

// appEnv holds the wired collaborators shared by the serve and seo commands.
type appEnv struct {
	Funnel   *funnel.Funnel
	SEO      *seo.Aggregator     // nil when keyword data is not configured
	Breakers *resilience.Breakers // nil when SEO is nil
	Sinks    []string
}

func newEngine() *scorer.Engine {
	return scorer.New(estimate.NewTickets(estimate.Metros, cfg.Forecast.DefaultAvgTicket))
}

func newCodec() (*token.Codec, error) {
	secret, err := cfg.TokenSecret()
	if err != nil {
		return nil, err
	}
	return token.NewCodec(secret)
}

// newAggregator wires the keyword-data provider behind retries and breakers.
func newAggregator() (*seo.Aggregator, *resilience.Breakers) {
	client := dataforseo.NewClient(cfg.DataForSEO.Login, cfg.DataForSEO.Password,
		dataforseo.WithBaseURL(cfg.DataForSEO.BaseURL),
		dataforseo.WithRateLimit(cfg.DataForSEO.RateLimit),
	)
	breakers := resilience.NewBreakers(cfg.BreakerConfig())
	provider := seo.NewDataForSEO(client,
		seo.WithRetryPolicy(cfg.RetryPolicy()),
		seo.WithBreakers(breakers),
	)

	var resolver seo.LocationResolver = seo.StaticResolver(cfg.SEO.DefaultLocation)
	if cfg.SEO.ResolveCities {
		resolver = seo.NewLocationIndex(provider, cfg.SEO.DefaultLocation)
	}

	agg := seo.NewAggregator(provider, provider,
		seo.WithConcurrency(cfg.SEO.Concurrency),
		seo.WithLookupTimeout(time.Duration(cfg.SEO.LookupTimeoutSecs)*time.Second),
		seo.WithVolumeTimeout(time.Duration(cfg.SEO.VolumeTimeoutSecs)*time.Second),
		seo.WithLocationResolver(resolver),
	)
	return agg, breakers
}

// newDispatcher builds a sink for every configured CRM/ESP destination.
func newDispatcher() *sink.Dispatcher {
	var sinks []sink.Sink
	if cfg.Close.Key != "" {
		sinks = append(sinks, sink.NewCloseSink(
			closecrm.NewClient(cfg.Close.Key, closecrm.WithBaseURL(cfg.Close.BaseURL))))
	}
	if cfg.Kit.Key != "" {
		sinks = append(sinks, sink.NewKitSink(newKitClient(), cfg.Kit.FormID))
	}
	if cfg.Webhook.URL != "" {
		sinks = append(sinks, sink.NewWebhookSink(cfg.Webhook.URL, nil))
	}
	return sink.NewDispatcher(sinks,
		sink.WithTimeout(time.Duration(cfg.Sinks.TimeoutSecs)*time.Second),
		sink.WithRetryPolicy(cfg.RetryPolicy()),
	)
}

func newKitClient() kit.Client {
	return kit.NewClient(cfg.Kit.Key, kit.WithBaseURL(cfg.Kit.BaseURL))
}

// initApp builds the funnel and its optional collaborators from cfg.
func initApp() (*appEnv, error) {
	codec, err := newCodec()
	if err != nil {
		return nil, err
	}

	env := &appEnv{}
	dispatcher := newDispatcher()
	env.Sinks = dispatcher.Sinks()
	opts := []funnel.Option{funnel.WithDispatcher(dispatcher)}

	if cfg.SEOReady() {
		env.SEO, env.Breakers = newAggregator()
		opts = append(opts, funnel.WithSEO(env.SEO))
	} else if !cfg.SEO.Enabled {
		zap.L().Info("seo enrichment disabled: seo.enabled=false")
	} else {
		zap.L().Warn("seo enrichment disabled: dataforseo.login or dataforseo.password not set")
	}
	if cfg.Google.Key != "" {
		opts = append(opts, funnel.WithPlaces(google.NewClient(cfg.Google.Key, google.WithBaseURL(cfg.Google.BaseURL))))
	}
	if cfg.Kit.Key != "" {
		opts = append(opts, funnel.WithKit(newKitClient(), cfg.Kit.FormID))
	}

	env.Funnel = funnel.New(newEngine(), codec, opts...)
	return env, nil
}

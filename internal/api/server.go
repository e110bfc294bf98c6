// Package api exposes the questionnaire funnel and SEO lookups over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/funnel"
	"github.com/sells-group/pipeline-score/internal/metrics"
	"github.com/sells-group/pipeline-score/internal/resilience"
	"github.com/sells-group/pipeline-score/internal/seo"
)

const defaultMaxBody = 1 << 20

// Server holds the handlers' dependencies.
type Server struct {
	funnel   *funnel.Funnel
	seo      *seo.Aggregator
	breakers *resilience.Breakers
	origins  []string
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithSEO enables the /api/seo endpoints.
func WithSEO(a *seo.Aggregator) Option {
	return func(s *Server) { s.seo = a }
}

// WithBreakers reports provider breaker states on /health.
func WithBreakers(bs *resilience.Breakers) Option {
	return func(s *Server) { s.breakers = bs }
}

// WithCORSOrigins sets the allowed browser origins. Default is any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewServer creates a server over f.
func NewServer(f *funnel.Funnel, opts ...Option) *Server {
	s := &Server{
		funnel:  f,
		origins: []string{"*"},
		maxBody: defaultMaxBody,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/quiz/start", s.startQuiz)
		r.Post("/quiz/submit", s.submitQuiz)
		r.Get("/results/{token}", s.result)
		r.Post("/email-report", s.emailReport)

		r.Route("/seo", func(r chi.Router) {
			r.Post("/keywords", s.seoKeywords)
			r.Post("/rankings", s.seoRankings)
			r.Post("/volumes", s.seoVolumes)
		})
	})

	return r
}

// requestLogger logs each request and counts it by route pattern.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

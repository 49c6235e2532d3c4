package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/nuvme-configurator/internal/access"
	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/common"
	"github.com/noah-isme/nuvme-configurator/internal/health"
	"github.com/noah-isme/nuvme-configurator/internal/obs"
	"github.com/noah-isme/nuvme-configurator/internal/queue"
	"github.com/noah-isme/nuvme-configurator/internal/quiz"
	"github.com/noah-isme/nuvme-configurator/internal/quote"
	"github.com/noah-isme/nuvme-configurator/internal/ratelimit"
	"github.com/noah-isme/nuvme-configurator/internal/security"
)

// Deps are the collaborators the HTTP router is assembled from. Nil optional
// fields disable the matching middleware or endpoint.
type Deps struct {
	Logger  zerolog.Logger
	Catalog *catalog.Catalog
	Quotes  *quote.Service
	Gate    *access.Gate
	Health  health.Handler
	Queue   *queue.StatsHandler

	AccessLimiter *limiter.Limiter
	APILimiter    *limiter.Limiter
	Idem          common.Idem

	HTTPMetrics    *obs.HTTPMetrics
	MetricsHandler http.Handler
	Tracing        bool

	CORSOrigins    []string
	BodyLimitBytes int64
	TrustProxy     bool
}

// NewRouter builds the chi router serving the configurator API.
func NewRouter(d Deps) http.Handler {
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Catalog: d.Catalog})
	quoteHandler := &quote.Handler{Service: d.Quotes}
	accessHandler := &access.Handler{Gate: d.Gate}
	quizHandler := quiz.Handler{}

	onLimitErr := func(err error) {
		d.Logger.Warn().Err(err).Msg("rate limit store unavailable")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(d.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", common.IdempotencyHeader},
		ExposedHeaders:   []string{"Location", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(security.Headers{TrustProxyProto: d.TrustProxy}.Middleware)
	r.Use(security.BodyLimit{Max: d.BodyLimitBytes}.Middleware)

	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.NoStore)

		v.Route("/access", func(a chi.Router) {
			a.With(ratelimit.Handler{
				Limiter: d.AccessLimiter,
				Key:     ratelimit.ClientKey("access"),
				OnError: onLimitErr,
			}.Middleware).Post("/pin", accessHandler.Unlock)
			a.Get("/session", accessHandler.Session)
		})

		v.Group(func(p chi.Router) {
			if d.Gate != nil {
				p.Use(d.Gate.RequireAccess)
			}
			p.Use(ratelimit.Handler{
				Limiter: d.APILimiter,
				Key:     ratelimit.ClientKey("api"),
				OnError: onLimitErr,
			}.Middleware)

			p.Get("/missions", catalogHandler.Missions)
			p.Get("/missions/{id}/modules", catalogHandler.MissionModules)
			p.Get("/modules/{id}", catalogHandler.ModuleDetail)
			p.Get("/plans", catalogHandler.Plans)

			p.Route("/quiz", func(q chi.Router) {
				q.Post("/plan", quizHandler.Plan)
				q.Post("/mission", quizHandler.Mission)
				q.Post("/cultural-fit", quizHandler.CulturalFit)
			})

			p.Route("/quotes", func(q chi.Router) {
				q.Post("/", quoteHandler.Create)
				q.Route("/{id}", func(s chi.Router) {
					s.Get("/", quoteHandler.Get)
					s.Put("/mission", quoteHandler.SetMission)
					s.Put("/modules/{moduleId}", quoteHandler.SelectModule)
					s.Delete("/modules/{moduleId}", quoteHandler.DeselectModule)
					s.Post("/reset", quoteHandler.Reset)
					s.Get("/total", quoteHandler.Total)
					s.With(d.Idem.Middleware).Post("/save", quoteHandler.Save)
					s.Get("/saved", quoteHandler.ListSaved)
				})
			})
			p.Get("/saved-quotes/{id}", quoteHandler.SavedQuote)

			p.Get("/ops/queues", d.Queue.Stats)
		})
	})

	return r
}

// DefaultMetricsHandler serves the default Prometheus registry.
func DefaultMetricsHandler() http.Handler {
	return promhttp.Handler()
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

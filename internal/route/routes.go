package route

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecocare/internal/config"
	"ecocare/internal/handler"
	"ecocare/internal/logger"
	"ecocare/internal/middleware"
	"ecocare/internal/repository"
	"ecocare/internal/service"
	"ecocare/internal/service/analytics"
	"ecocare/internal/service/websocket"
)

// Deps are the services the HTTP layer maps onto.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Analytics *analytics.Service
	Manager   *service.Manager
	Hub       *websocket.HubService
	Users     repository.UserRepository
	DB        handler.Pinger
}

// SetupRoutes registers every endpoint on a chi router.
func SetupRoutes(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.Get("/recent", handler.GetRecentHandler(d.Analytics))
		r.Get("/materials", handler.GetTopMaterialsHandler(d.Analytics))
		r.Get("/stats", handler.GetStatsHandler(d.Analytics))
		r.Get("/alerts", handler.GetAlertsHandler(d.Analytics))
		r.Get("/accuracy", handler.GetAccuracyHandler(d.Analytics))
		r.Get("/history", handler.GetHistoryHandler(d.Analytics))
		r.Get("/timeline", handler.GetTimelineHandler(d.Analytics))

		add := r.With()
		if cfg.RateLimit.IngestRequests > 0 {
			add = r.With(httprate.LimitByIP(cfg.RateLimit.IngestRequests, cfg.RateLimit.IngestWindow))
		}
		add.Post("/add", handler.AddDetectionHandler(d.Manager, d.Logger))
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(auth)

		r.Get("/profile", handler.GetProfileHandler(d.Users))
		r.Put("/profile", handler.UpdateProfileHandler(d.Users))
	})

	r.Route("/logs", func(r chi.Router) {
		r.Use(auth)

		r.Get("/", handler.ShowLogsHandler(d.Logger))
		r.Delete("/", handler.ClearLogsHandler(d.Logger))
	})

	r.Get("/ws", handler.ViewWebsocketHandler(d.Hub, handler.NewUpgrader(cfg.Server.AllowedOrigins), d.Logger))
	r.Get("/health", handler.HealthHandler(d.DB, d.Hub))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", handler.RootHandler())

	return r
}

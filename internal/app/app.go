package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/thejerf/suture/v4"

	"ecocare/internal/config"
	"ecocare/internal/logger"
	"ecocare/internal/repository/sqlite"
	"ecocare/internal/route"
	"ecocare/internal/service"
	"ecocare/internal/service/analytics"
	"ecocare/internal/service/bus"
	"ecocare/internal/service/websocket"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	bus        bus.Bus
	hubService *websocket.HubService
	manager    *service.Manager
	server     *http.Server
	supervisor *suture.Supervisor
}

// NewApp opens the store and wires every service. Nothing runs until Run.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	eventBus, err := newBus(cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	detections := sqlite.NewDetectionRepository(db)
	users := sqlite.NewUserRepository(db)

	hub := websocket.NewHubService(log.Component("websocket"))
	mng := service.NewManager(detections, eventBus, cfg, log.Component("ingest"))
	stats := analytics.NewService(detections, log.Component("analytics"), analytics.Options{
		Location:               loc,
		RecentLimit:            cfg.Analytics.RecentLimit,
		HistoryLimit:           cfg.Analytics.HistoryLimit,
		LowConfidenceThreshold: cfg.Analytics.LowConfidenceThreshold,
		RepeatedScanThreshold:  cfg.Analytics.RepeatedScanThreshold,
	})

	router := route.SetupRoutes(route.Deps{
		Config:    cfg,
		Logger:    log,
		Analytics: stats,
		Manager:   mng,
		Hub:       hub,
		Users:     users,
		DB:        db,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	supervisor := suture.New("ecocare", suture.Spec{
		EventHook: func(e suture.Event) {
			log.Warn().Fields(e.Map()).Msg(e.String())
		},
		Timeout: cfg.Server.ShutdownTimeout,
	})
	supervisor.Add(hub)
	supervisor.Add(bus.NewForwarder(eventBus, hub, log.Component("forwarder")))
	supervisor.Add(mng)
	supervisor.Add(NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		bus:        eventBus,
		hubService: hub,
		manager:    mng,
		server:     server,
		supervisor: supervisor,
	}, nil
}

func newBus(cfg *config.Config, log *logger.Logger) (bus.Bus, error) {
	if cfg.Realtime.RedisAddr == "" {
		return bus.NewLocalBus(log.Component("bus")), nil
	}
	b, err := bus.NewRedisBus(bus.RedisOptions{
		Addr:    cfg.Realtime.RedisAddr,
		Channel: cfg.Realtime.RedisChannel,
	}, log.Component("bus"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect event bus: %w", err)
	}
	return b, nil
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	busKind := "local"
	if a.config.Realtime.RedisAddr != "" {
		busKind = "redis " + a.config.Realtime.RedisAddr
	}
	a.logger.Info().
		Str("addr", a.config.Addr()).
		Str("database", a.config.Database.Path).
		Str("bus", busKind).
		Str("timezone", a.config.Analytics.Timezone).
		Msg("🚀 EcoCare backend starting")

	err := a.supervisor.Serve(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Close() error {
	busErr := a.bus.Close()
	dbErr := a.db.Close()
	if busErr != nil {
		return busErr
	}
	return dbErr
}

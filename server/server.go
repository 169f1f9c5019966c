package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/DanishNadar/ttp-tracker/api"
	"github.com/DanishNadar/ttp-tracker/api/handlers"
	"github.com/DanishNadar/ttp-tracker/config"
	"github.com/DanishNadar/ttp-tracker/internal/cron"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/repository"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
	"github.com/DanishNadar/ttp-tracker/services"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cron         *cron.CronManager
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config, log logger.Logger, trackingDB *gorm.DB) (*Server, error) {
	if err := cfg.ValidateForTracker(); err != nil {
		return nil, err
	}

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, log)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	repos := repository.InitRepositories(trackingDB)

	svcs, err := services.InitServices(cfg, log, repos, true)
	if err != nil {
		closer.Close()
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	resultsPath := cfg.OutreachConfig.ResultsXlsx
	cronManager := cron.NewCronManager(cfg.Cron, log, func(ctx context.Context) error {
		_, err := svcs.Reconciler.SyncFile(ctx, resultsPath)
		return err
	})

	return &Server{
		config:       cfg,
		log:          log,
		router:       router,
		services:     svcs,
		repositories: repos,
		cron:         cronManager,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:              ":" + cfg.TrackerConfig.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *Server) Initialize() {
	tracking := handlers.NewTrackingHandler(
		s.repositories.TrackingEventRepository,
		s.services.EventPublisher,
		s.services.Metrics,
		s.config.AppConfig.TrackerSecret,
		s.log,
	)
	api.RegisterRoutes(s.router, tracking, s.services.Metrics)
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		span := opentracing.GlobalTracer().StartSpan(fmt.Sprintf("panic.%s", name))
		defer span.Finish()
		ext.Error.Set(span, true)
		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
		s.log.Errorf("Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	s.Initialize()

	if err := s.cron.Start(); err != nil {
		return errors.Wrap(err, "failed to start cron manager")
	}

	serveErr := make(chan error, 1)
	go s.wrapGoroutine("http_server", func() {
		s.log.Infof("Tracker listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})

	return s.waitForShutdown(serveErr)
}

func (s *Server) waitForShutdown(serveErr <-chan error) error {
	defer s.recoverWithJaeger("shutdown")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
		s.log.Info("Shutting down...")
	case runErr = <-serveErr:
		s.log.Errorf("HTTP server error: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("HTTP server shutdown error: %v", err)
	}
	s.cron.Stop()

	if err := s.services.EventPublisher.Close(); err != nil {
		s.log.Warnf("Event publisher close error: %v", err)
	}
	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}

	s.log.Info("Tracker stopped")
	return runErr
}

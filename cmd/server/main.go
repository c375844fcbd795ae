package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"medsummary/internal/config"
	"medsummary/internal/navstate"
	"medsummary/internal/platform/logger"
	"medsummary/internal/platform/summarizer"
	"medsummary/internal/report"
	"medsummary/internal/summary"
	"medsummary/internal/web"
)

const stateSweepInterval = time.Minute

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	// 2. Clients and state
	summarizerClient := summarizer.NewClient(cfg.SummarizerURL, cfg.SummarizerTimeout())
	store := navstate.NewStore(cfg.ResultTTL(), stateSweepInterval)
	defer store.Close()

	// 3. Services
	pages, err := web.NewRenderer()
	if err != nil {
		log.Fatal("failed to load templates", zap.Error(err))
	}
	reportSvc := report.NewService(cfg.ReportFontPaths, log)
	summarySvc := summary.NewService(summarizerClient, reportSvc, log)
	summaryHandler := summary.NewHandler(summarySvc, store, pages, log, cfg.UploadMaxBytes())

	// 4. Router
	r := newRouter(cfg, log, summaryHandler)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.Env),
			zap.String("summarizer_url", cfg.SummarizerURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("waiting for in-flight requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("server exiting")
}

func newRouter(cfg *config.Config, log *zap.Logger, h *summary.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.Recoverer)

	uploadLimiter := httprate.LimitByIP(cfg.UploadRateLimitPerMinute, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	summary.RegisterRoutes(r, h, uploadLimiter)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
		summary.RegisterAPIRoutes(r, h, uploadLimiter)
	})

	return r
}

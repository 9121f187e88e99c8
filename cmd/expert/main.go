package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"monotributo-backend/internal/config"
	"monotributo-backend/internal/service/expert"
	"monotributo-backend/internal/service/report"
	"monotributo-backend/internal/storage"
	"monotributo-backend/internal/storage/afip"
	"monotributo-backend/internal/storage/snapshot"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env)

	rules, err := expert.LoadRules(cfg.RulePack)
	if err != nil {
		log.Error("failed to load rule pack", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("rule pack loaded", slog.Int("rules", len(rules)))

	store := snapshot.New(cfg.DataDir)
	scraper := afip.New(cfg.ScrapeURL, cfg.ScrapeTimeout, log)
	loader := storage.NewLoader(scraper, store, log)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.ScrapeTimeout+10*time.Second)
	data := storage.NewHolder(loader.Load(loadCtx))
	cancelLoad()

	sessions := expert.NewStore(cfg.SessionTTL)
	defer sessions.Close()

	svc := expert.New(rules, sessions, data, log)
	exporter := report.NewTableExporter(data)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(cfg, log, svc, loader, data, store, exporter),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch env {
	case envDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case envLocal, envProd:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

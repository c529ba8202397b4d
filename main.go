package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ config: %v\n", err)
		os.Exit(1)
	}

	if err := initLogger(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "❌ logger: %v\n", err)
		os.Exit(1)
	}
	defer syncLogger()

	store, err := openMatchStore(cfg.DBPath)
	if err != nil {
		log.Fatalw("opening match store failed", "path", cfg.DBPath, "error", err)
	}
	defer store.Close()

	svc := &ratingService{source: newMatchSource(cfg, store)}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(svc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.FetchTimeout * time.Duration(len(cfg.Pages)+1),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("🎨 OPR calculator is running", "addr", cfg.Addr, "pages", len(cfg.Pages), "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
}

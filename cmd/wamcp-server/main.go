package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lojasmm/wamcp/internal/api"
	"github.com/lojasmm/wamcp/internal/chatlock"
	"github.com/lojasmm/wamcp/internal/config"
	"github.com/lojasmm/wamcp/internal/store"
	"github.com/lojasmm/wamcp/internal/tools"
	"github.com/lojasmm/wamcp/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}
	history, err := store.NewBoltStore(cfg.HistoryPath())
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer history.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wa, err := whatsapp.NewClient(ctx, whatsapp.Options{
		StoreDialect: cfg.StoreDialect,
		StoreDSN:     cfg.StoreDSN,
		LogLevel:     cfg.LogLevel,
		SendRate:     cfg.SendRate,
		SendBurst:    cfg.SendBurst,
	}, history)
	if err != nil {
		log.Fatalf("whatsapp: %v", err)
	}
	defer wa.Close()

	// The API comes up while pairing is still pending; tools that need the
	// session answer 503 until it connects.
	go func() {
		if err := wa.Connect(ctx); err != nil {
			log.Printf("whatsapp: connect: %v", err)
			stop()
		}
	}()

	locks := chatlock.NewManager()

	// Periodic cleanup of idle per-chat send locks
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				locks.Cleanup(1 * time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := tools.NewService(history, wa, locks, cfg.DownloadDir)
	server := api.NewServer(svc, api.NewMetrics(reg))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("wamcp: listening on :%s", cfg.Port)
		log.Printf("wamcp: history at %s, downloads in %s", cfg.HistoryPath(), cfg.DownloadDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("wamcp: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("wamcp: stopped")
}

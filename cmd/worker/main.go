package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/db"
	"github.com/fleetmind/rentalhub/internal/mailer"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/fleetmind/rentalhub/internal/queue/worker"
	"github.com/fleetmind/rentalhub/internal/repo/postgres"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	jobsRepo := postgres.NewJobsRepo(pool, prom)

	var mail mailer.Mailer

	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPass,
			Sender: cfg.SMTPSender,
		})
	} else {
		log.Warn("SMTP not configured, emails go to the log")
		mail = mailer.NewLogMailer(log)
	}

	mail = mailer.NewProtectedMailer(mail, mailer.ProtectedConfig{})

	w := worker.New(worker.Config{
		PollInterval: 500 * time.Millisecond,
	}, jobsRepo, mail, prom, log)

	// health + metrics sidecar endpoint
	healthSrv := &http.Server{
		Addr:              ":9091",
		Handler:           healthMux(w, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
		}
	}()

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker shutdown complete")
}

func healthMux(w *worker.Worker, registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", w.HealthHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetmind/rentalhub/internal/auth"
	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/db"
	httpx "github.com/fleetmind/rentalhub/internal/http"
	"github.com/fleetmind/rentalhub/internal/mailer"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/fleetmind/rentalhub/internal/queue/redisclient"
	"github.com/fleetmind/rentalhub/internal/resettoken"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"log/slog"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is optional; without an endpoint spans stay local no-ops
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "rentalhub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	seedCtx, seedCancel := config.WithTimeout(5 * time.Second)
	if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
	}
	seedCancel()

	// reset tokens live in redis when configured, in memory otherwise
	var resetStore resettoken.Store = resettoken.NewMemoryStore()

	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, pingCancel := config.WithTimeout(2 * time.Second)
		err := rc.Ping(pingCtx)
		pingCancel()

		if err != nil {
			log.Warn("redis unreachable, falling back to in-memory reset store", "err", err)
		} else {
			defer rc.Close()
			resetStore = resettoken.NewRedisStore(rc.Raw())
			log.Info("reset tokens backed by redis", "addr", cfg.RedisAddr)
		}
	}

	resets := resettoken.NewRegistry(resetStore, cfg.ResetTTL)

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

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Pool:     pool,
		Prom:     prom,
		Registry: registry,
		JWT:      jwtManager,
		Resets:   resets,
		Mail:     mail,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

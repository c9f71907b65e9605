package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fleetmind/rentalhub/internal/domain/job"
	"github.com/fleetmind/rentalhub/internal/mailer"
	"github.com/fleetmind/rentalhub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	WorkerID     string
	PollInterval time.Duration
	LockTTL      time.Duration
	StaleSweep   time.Duration
}

type Worker struct {
	cfg    Config
	repo   JobsRepository
	mailer mailer.Mailer
	prom   *observability.Prom
	log    *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, m mailer.Mailer, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.WorkerID == "" {
		host, _ := os.Hostname()
		cfg.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}
	if cfg.StaleSweep <= 0 {
		cfg.StaleSweep = 30 * time.Second
	}

	return &Worker{
		cfg:    cfg,
		repo:   repo,
		mailer: m,
		prom:   prom,
		log:    log,
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

// Run polls until the context is cancelled. Each tick drains the queue, then a
// slower ticker requeues jobs whose worker died while holding the lock.

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	stale := time.NewTicker(w.cfg.StaleSweep)
	defer stale.Stop()

	w.setReady(true)
	defer w.setReady(false)

	w.log.Info("worker started", "worker_id", w.cfg.WorkerID, "poll_interval", w.cfg.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-stale.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				w.log.Error("requeue stale failed", "error", err)
				continue
			}
			if n > 0 {
				w.log.Warn("requeued stale jobs", "count", n)
			}

		case <-ticker.C:
			for {
				processed, err := w.ProcessOne(ctx)
				if err != nil {
					w.log.Error("process error", "error", err)
					break
				}
				if !processed {
					break
				}
			}
		}
	}
}

package worker

import (
	"context"
	"errors"
	"time"

	"github.com/fleetmind/rentalhub/internal/domain/job"
)

// ProcessOne claims and executes a single job. The bool reports whether a job
// was claimed at all, so callers can drain the queue until it returns false.

func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	err = w.execute(ctx, j)

	if err != nil {
		w.handleFailure(ctx, j, err)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	if w.prom != nil {
		w.prom.JobResults.WithLabelValues(j.Type, "done").Inc()
	}

	w.log.Info("job done", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts)

	return true, nil
}

// handleFailure reschedules with exponential backoff until the attempt budget
// is spent, then parks the job as failed for manual inspection.

func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) {
	nextAttempt := j.Attempts + 1

	if nextAttempt >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed error", "job_id", j.ID, "error", err)
		}
		if w.prom != nil {
			w.prom.JobResults.WithLabelValues(j.Type, "failed").Inc()
		}
		w.log.Error("job exhausted", "job_id", j.ID, "type", j.Type, "attempts", nextAttempt, "error", execErr)
		return
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("reschedule error", "job_id", j.ID, "error", err)
		return
	}

	if w.prom != nil {
		w.prom.JobResults.WithLabelValues(j.Type, "retry").Inc()
	}

	w.log.Warn("job rescheduled", "job_id", j.ID, "type", j.Type, "attempt", nextAttempt, "run_at", runAt, "error", execErr)
}

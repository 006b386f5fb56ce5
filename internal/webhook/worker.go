package webhook

import (
	"context"
	"log/slog"
	"time"
)

// Worker retries failed deliveries with exponential backoff.
type Worker struct {
	service  *Service
	logger   *slog.Logger
	interval time.Duration
}

func NewWorker(service *Service, logger *slog.Logger, interval time.Duration) *Worker {
	if interval == 0 {
		interval = 5 * time.Second
	}
	return &Worker{
		service:  service,
		logger:   logger,
		interval: interval,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("webhook worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopped", "pending", w.service.Pending())
			return
		case <-ticker.C:
			w.processQueue(ctx)
		}
	}
}

func (w *Worker) processQueue(ctx context.Context) {
	for _, job := range w.service.due(time.Now()) {
		if ctx.Err() != nil {
			// put it back for the next run
			_ = w.service.enqueue(job)
			continue
		}
		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *Job) {
	if err := w.service.deliver(ctx, job.EventType, job.Payload); err != nil {
		w.scheduleRetry(job, err.Error())
		return
	}
	w.logger.Info("webhook job completed", "job_id", job.ID, "attempts", job.Attempts+1)
}

func (w *Worker) scheduleRetry(job *Job, errorMsg string) {
	job.Attempts++
	job.LastError = errorMsg

	if job.Attempts >= job.MaxAttempts {
		w.logger.Warn("webhook job failed", "job_id", job.ID, "attempts", job.Attempts, "error", errorMsg)
		return
	}

	delay := time.Duration(1<<job.Attempts) * time.Second
	job.NextRetryAt = time.Now().Add(delay)

	if err := w.service.enqueue(job); err != nil {
		w.logger.Warn("webhook job dropped", "job_id", job.ID, "error", err)
		return
	}

	w.logger.Info("webhook job scheduled for retry",
		"job_id", job.ID,
		"attempts", job.Attempts,
		"next_retry", job.NextRetryAt,
	)
}

package queue

import (
	"context"
	"fmt"
	"time"

	"directory_backend/internal/directory/consumer"
	"directory_backend/internal/directory/intent"
	"directory_backend/platform/config"
	"directory_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker drains the intent queue and applies batches through the consumer.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	applier *consumer.Applier
	log     *logger.Logger
}

// NewWorker creates the queue worker. Pending intents are aggregated into
// batches of up to the configured size (or whatever accumulated within the
// batch delay) and delivered as a single task; a handler error fails the
// whole batch and asynq redelivers it after backoff.
func NewWorker(cfg config.QueueConfig, applier *consumer.Applier, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetQueueConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
		GroupAggregator:  intentAggregator(cfg.GetTaskTimeout(), cfg.GetTaskMaxRetry()),
		GroupMaxSize:     cfg.GetQueueBatchSize(),
		GroupMaxDelay:    cfg.GetQueueBatchMaxDelay(),
		GroupGracePeriod: time.Second,
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		applier: applier,
		log:     log,
	}

	mux.HandleFunc(TaskDirectoryIntentBatch, w.handleIntentBatch)
	mux.HandleFunc(TaskDirectoryIntent, w.handleIntent)

	return w, nil
}

// handleIntentBatch applies an aggregated batch. A malformed payload is
// dropped rather than retried: redelivery cannot make it parse.
func (w *Worker) handleIntentBatch(ctx context.Context, task *asynq.Task) error {
	intents, err := ParseIntentBatch(task)
	if err != nil {
		w.log.IntentSkipped(task.Type(), "malformed batch payload: "+err.Error())
		return fmt.Errorf("parse intent batch: %v: %w", err, asynq.SkipRetry)
	}
	return w.applier.ApplyBatch(ctx, intents)
}

// handleIntent applies a single intent that bypassed aggregation.
func (w *Worker) handleIntent(ctx context.Context, task *asynq.Task) error {
	in, err := ParseIntent(task)
	if err != nil {
		w.log.IntentSkipped(task.Type(), "malformed payload: "+err.Error())
		return fmt.Errorf("parse intent: %v: %w", err, asynq.SkipRetry)
	}
	return w.applier.ApplyBatch(ctx, []intent.Intent{in})
}

// Run blocks until the context is cancelled or the server stops.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("queue worker stopped", "error", err)
	}
}

// Package queue provides the intent queue on asynq. The producer side
// publishes one task per accepted mutation; the worker side aggregates
// pending tasks into batches and applies them through the consumer.
package queue

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"directory_backend/internal/directory/intent"
	"directory_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client publishes intents to the queue.
type Client struct {
	client   *asynq.Client
	queue    string
	timeout  time.Duration
	maxRetry int
}

// NewClient creates an intent queue client from the resolved configuration.
func NewClient(cfg config.QueueConfig) (*Client, error) {
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

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		timeout:  cfg.GetTaskTimeout(),
		maxRetry: cfg.GetTaskMaxRetry(),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Publish enqueues one intent. The task timeout is the visibility window:
// a worker that does not finish within it loses the task to redelivery, so
// an intent may be applied more than once.
func (c *Client) Publish(ctx context.Context, in intent.Intent) error {
	task, err := NewIntentTask(in)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.Group(intentGroup),
		asynq.Timeout(c.timeout),
		asynq.MaxRetry(c.maxRetry),
	)
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

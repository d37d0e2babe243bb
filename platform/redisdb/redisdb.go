// Package redisdb provides record store client construction.
// This is part of the platform layer and contains no business logic.
package redisdb

import (
	"context"
	"crypto/tls"
	"fmt"

	"directory_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from the resolved configuration.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if opt.TLSConfig != nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig.InsecureSkipVerify = true
	} else if opt.TLSConfig == nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return redis.NewClient(opt), nil
}

// ClientAdapter wraps a Redis client for health checks.
type ClientAdapter struct {
	client *redis.Client
}

// NewClientAdapter creates an adapter exposing Ping for readiness checks.
func NewClientAdapter(client *redis.Client) *ClientAdapter {
	return &ClientAdapter{client: client}
}

// Ping verifies the store connection is alive.
func (a *ClientAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// RedisConfig provides connection settings for the record store and queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// QueueConfig provides settings for the intent queue client and worker.
type QueueConfig interface {
	RedisConfig
	GetQueueName() string
	GetQueueConcurrency() int
	GetQueueBatchSize() int
	GetQueueBatchMaxDelay() time.Duration
	GetTaskTimeout() time.Duration
	GetTaskMaxRetry() int
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WorkerConfig provides settings for the consumer worker process.
type WorkerConfig interface {
	QueueConfig
	GetWorkerHealthAddr() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values. It is resolved once at
// process start and passed explicitly to constructors; there is no ambient
// global configuration switch.
type Config struct {
	Env                string
	HTTPAddr           string
	WorkerHealthAddr   string
	RedisURL           string
	RedisTLSInsecure   bool
	QueueName          string
	QueueConcurrency   int
	QueueBatchSize     int
	QueueBatchMaxDelay time.Duration
	TaskTimeout        time.Duration
	TaskMaxRetry       int
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
}

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// QueueConfig implementation
func (c *Config) GetQueueName() string                 { return c.QueueName }
func (c *Config) GetQueueConcurrency() int             { return c.QueueConcurrency }
func (c *Config) GetQueueBatchSize() int               { return c.QueueBatchSize }
func (c *Config) GetQueueBatchMaxDelay() time.Duration { return c.QueueBatchMaxDelay }
func (c *Config) GetTaskTimeout() time.Duration        { return c.TaskTimeout }
func (c *Config) GetTaskMaxRetry() int                 { return c.TaskMaxRetry }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// WorkerConfig implementation
func (c *Config) GetWorkerHealthAddr() string { return c.WorkerHealthAddr }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	queueConcurrency, err := intEnv("QUEUE_CONCURRENCY", "10")
	if err != nil {
		return nil, err
	}
	queueBatchSize, err := intEnv("QUEUE_BATCH_SIZE", "10")
	if err != nil {
		return nil, err
	}
	queueBatchMaxDelay, err := durationEnv("QUEUE_BATCH_MAX_DELAY", "5s")
	if err != nil {
		return nil, err
	}
	taskTimeout, err := durationEnv("TASK_TIMEOUT", "300s")
	if err != nil {
		return nil, err
	}
	taskMaxRetry, err := intEnv("TASK_MAX_RETRY", "25")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		WorkerHealthAddr:   getEnv("WORKER_HEALTH_ADDR", ":8081"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		QueueName:          getEnv("QUEUE_NAME", "directory"),
		QueueConcurrency:   queueConcurrency,
		QueueBatchSize:     queueBatchSize,
		QueueBatchMaxDelay: queueBatchMaxDelay,
		TaskTimeout:        taskTimeout,
		TaskMaxRetry:       taskMaxRetry,
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.QueueName == "" {
		return nil, fmt.Errorf("QUEUE_NAME cannot be empty")
	}
	if cfg.QueueBatchSize < 1 {
		return nil, fmt.Errorf("QUEUE_BATCH_SIZE must be at least 1")
	}
	if cfg.TaskTimeout <= 0 {
		return nil, fmt.Errorf("TASK_TIMEOUT must be a positive duration")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func durationEnv(key, fallback string) (time.Duration, error) {
	value := getEnv(key, fallback)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, value)
	}
	return d, nil
}

func intEnv(key, fallback string) (int, error) {
	value := getEnv(key, fallback)
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return result, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

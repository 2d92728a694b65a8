package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const submissionKeyPrefix = "cwd:submit:"

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance, nil when Redis is not initialized
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		err := client.Close()
		client = nil
		return err
	}
	return nil
}

// SubmissionLimiter throttles comment submissions per IP across instances
type SubmissionLimiter struct {
	rdb *redis.Client
}

func NewSubmissionLimiter(rdb *redis.Client) *SubmissionLimiter {
	return &SubmissionLimiter{rdb: rdb}
}

// Allow reserves the submission slot for ip. It returns false while a previous
// reservation is still alive.
func (l *SubmissionLimiter) Allow(ctx context.Context, ip string, window time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, submissionKeyPrefix+ip, time.Now().UnixMilli(), window).Result()
	if err != nil {
		logger.Error("Failed to reserve submission slot", err, map[string]interface{}{
			"ip": ip,
		})
		return false, err
	}
	return ok, nil
}

package evaluation

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter bounds how many evaluations one client may start per window.
// Each evaluation fans out several inference calls, so this protects the
// upstream quota.
type RateLimiter struct {
	rdb *redis.Client
}

// NewRateLimiter creates a new RateLimiter instance
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{rdb: GetRedisClient()}
}

// RateLimitConfig defines rate limit rules
type RateLimitConfig struct {
	MaxEvaluations   int           // per window
	EvaluationWindow time.Duration // window length
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxEvaluations:   10,
		EvaluationWindow: time.Minute,
	}
}

// CheckEvaluationRateLimit checks if the client may start another evaluation
func (rl *RateLimiter) CheckEvaluationRateLimit(clientID string, config RateLimitConfig) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, fmt.Errorf("Redis client not available")
	}

	key := fmt.Sprintf("rate:evaluate:%s", clientID)

	// Check current count
	count, err := rl.rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		// First evaluation in this window, allow it
		return true, nil
	} else if err != nil {
		return false, err
	}

	if count >= config.MaxEvaluations {
		return false, nil
	}

	return true, nil
}

// RecordEvaluation records a started evaluation for rate limiting
func (rl *RateLimiter) RecordEvaluation(clientID string, config RateLimitConfig) error {
	if rl == nil || rl.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}

	key := fmt.Sprintf("rate:evaluate:%s", clientID)

	// Increment count
	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	// Set expiration if first time
	if count == 1 {
		rl.rdb.Expire(ctx, key, config.EvaluationWindow)
	}

	return nil
}

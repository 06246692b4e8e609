package pacer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// minPoll bounds the wait between two slot reservation attempts.
const minPoll = 50 * time.Millisecond

// Redis extends Local pacing across processes: after the local delay it
// reserves a per-provider, per-host slot with SET NX PX so that several
// job-searcher processes hitting the same site keep the same spacing.
// Only timestamps live in Redis; keys expire with the sampled delay.
type Redis struct {
	client   *redis.Client
	provider string
	local    *Local
	logger   *zap.Logger
}

// Dial parses redisURL and verifies connectivity.
// URL format: redis://localhost:6379
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("pacer: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pacer: redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedis wraps local with a Redis slot reservation scoped to provider.
func NewRedis(client *redis.Client, provider string, local *Local, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, provider: provider, local: local, logger: logger}
}

// Wait implements Pacer. When Redis is unreachable it degrades to local pacing.
func (r *Redis) Wait(ctx context.Context, host string) error {
	delay := r.local.Delay()
	if err := r.local.sleep(ctx, delay); err != nil {
		return err
	}

	key := buildKey(r.provider, host)
	for {
		ok, err := r.client.SetNX(ctx, key, time.Now().UnixMilli(), delay).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("redis pacing unavailable, using local pacing only",
				zap.String("provider", r.provider),
				zap.String("host", host),
				zap.Error(err),
			)
			return nil
		}
		if ok {
			return nil
		}

		ttl, err := r.client.PTTL(ctx, key).Result()
		if err != nil || ttl < minPoll {
			ttl = minPoll
		}
		r.logger.Debug("waiting for pacing slot held by another process",
			zap.String("provider", r.provider),
			zap.String("host", host),
			zap.Duration("wait", ttl),
		)
		if err := r.local.sleep(ctx, ttl); err != nil {
			return err
		}
	}
}

func buildKey(provider, host string) string {
	return fmt.Sprintf("jobsearcher:pace:%s:%s", strings.ToLower(provider), strings.ToLower(host))
}

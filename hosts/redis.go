package hosts

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads host URLs from the members of a redis set.
type RedisSource struct {
	Client redis.UniversalClient
	Key    string
	Logger *slog.Logger
}

// Refresh replaces the pool's hosts with the current set members. An empty
// set leaves the pool untouched and returns ErrNoHosts.
func (s *RedisSource) Refresh(ctx context.Context, pool *Pool) error {
	members, err := s.Client.SMembers(ctx, s.Key).Result()
	if err != nil {
		return fmt.Errorf("hosts: redis %s: %w", s.Key, err)
	}
	slices.Sort(members)

	hosts, err := Parse(members...)
	if err != nil {
		return fmt.Errorf("hosts: redis %s: %w", s.Key, err)
	}
	if len(hosts) == 0 {
		return fmt.Errorf("hosts: redis %s: %w", s.Key, ErrNoHosts)
	}

	pool.Replace(hosts...)
	return nil
}

// Poll refreshes the pool every interval until ctx is done. The first refresh
// must succeed; later failures are logged and the previous hosts kept.
func (s *RedisSource) Poll(ctx context.Context, pool *Pool, interval time.Duration) error {
	logger := loggerOrDiscard(s.Logger)

	if err := s.Refresh(ctx, pool); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Refresh(ctx, pool); err != nil {
				logger.Warn("hosts refresh failed", slog.String("key", s.Key), slog.String("err", err.Error()))
			}
		}
	}
}

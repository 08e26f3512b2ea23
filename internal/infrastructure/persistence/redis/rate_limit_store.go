package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
)

var _ repository.RateLimitRepository = (*RateLimitStore)(nil)

const (
	fieldCount        = "count"
	fieldWindowStart  = "window_start"
	fieldBlockedUntil = "blocked_until"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
)

// createIfAbsentScript inserts the hash only when the key does not exist.
// Returns 1 when created, 0 when the key was already present.
var createIfAbsentScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1],
	'count', ARGV[1],
	'window_start', ARGV[2],
	'blocked_until', ARGV[3],
	'created_at', ARGV[4],
	'updated_at', ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RateLimitStore keeps one hash per (ip, endpoint) pair.
// Keys expire one window after the last write so abandoned counters clean themselves up.
type RateLimitStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRateLimitStore creates a redis-backed rate limit record store.
func NewRateLimitStore(conn *RedisConnection, window time.Duration) *RateLimitStore {
	return &RateLimitStore{client: conn.Client(), ttl: window}
}

func (s *RateLimitStore) Find(ctx context.Context, ip, endpoint string) (*models.RateLimitRecord, error) {
	key := rateLimitKey(ip, endpoint)

	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read rate limit record: %w", err)
	}
	if len(values) == 0 {
		return nil, errors.ErrRecordNotFound("rate limit record", key)
	}

	record, err := decodeRecord(ip, endpoint, values)
	if err != nil {
		return nil, fmt.Errorf("corrupt rate limit record %s: %w", key, err)
	}
	return record, nil
}

func (s *RateLimitStore) Create(ctx context.Context, record *models.RateLimitRecord) error {
	key := rateLimitKey(record.IPAddress, record.Endpoint)
	now := time.Now().UTC()

	created, err := createIfAbsentScript.Run(ctx, s.client, []string{key},
		record.RequestCount,
		record.WindowStart.UnixMilli(),
		encodeBlockedUntil(record.BlockedUntil),
		now.UnixMilli(),
		s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to create rate limit record: %w", err)
	}
	if created == 0 {
		return errors.ErrConflict(fmt.Sprintf("rate limit record already exists: %s", key))
	}
	return nil
}

func (s *RateLimitStore) Update(ctx context.Context, record *models.RateLimitRecord) error {
	key := rateLimitKey(record.IPAddress, record.Endpoint)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldCount, record.RequestCount,
			fieldWindowStart, record.WindowStart.UnixMilli(),
			fieldBlockedUntil, encodeBlockedUntil(record.BlockedUntil),
			fieldUpdatedAt, time.Now().UTC().UnixMilli(),
		)
		pipe.PExpire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update rate limit record: %w", err)
	}
	return nil
}

func (s *RateLimitStore) Delete(ctx context.Context, ip, endpoint string) error {
	if err := s.client.Del(ctx, rateLimitKey(ip, endpoint)).Err(); err != nil {
		return fmt.Errorf("failed to delete rate limit record: %w", err)
	}
	return nil
}

func rateLimitKey(ip, endpoint string) string {
	return fmt.Sprintf("%s:%s:%s", constants.RateLimitKeyPrefix, endpoint, ip)
}

// encodeBlockedUntil stores an absent block as 0.
func encodeBlockedUntil(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixMilli()
}

func decodeRecord(ip, endpoint string, values map[string]string) (*models.RateLimitRecord, error) {
	count, err := strconv.Atoi(values[fieldCount])
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	windowStart, err := parseMillis(values[fieldWindowStart])
	if err != nil {
		return nil, fmt.Errorf("window_start: %w", err)
	}

	record := &models.RateLimitRecord{
		IPAddress:    ip,
		Endpoint:     endpoint,
		RequestCount: count,
		WindowStart:  windowStart,
	}

	if raw := values[fieldBlockedUntil]; raw != "" && raw != "0" {
		blockedUntil, err := parseMillis(raw)
		if err != nil {
			return nil, fmt.Errorf("blocked_until: %w", err)
		}
		record.BlockedUntil = &blockedUntil
	}
	if createdAt, err := parseMillis(values[fieldCreatedAt]); err == nil {
		record.CreatedAt = createdAt
	}
	if updatedAt, err := parseMillis(values[fieldUpdatedAt]); err == nil {
		record.UpdatedAt = updatedAt
	}
	return record, nil
}

func parseMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

//Personal.AI order the ending

package ratelimit

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
)

var _ repository.RateLimitRepository = (*MemoryStore)(nil)

// MemoryStore keeps rate limit records in process memory.
// Entries expire one window after their last write, which never drops a live window or block.
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryStore creates an in-memory record store for the given window length.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(window, 2*window),
		ttl:   window,
	}
}

func (s *MemoryStore) Find(ctx context.Context, ip, endpoint string) (*models.RateLimitRecord, error) {
	v, ok := s.cache.Get(memoryKey(ip, endpoint))
	if !ok {
		return nil, errors.ErrRecordNotFound("rate limit record", memoryKey(ip, endpoint))
	}
	record := v.(models.RateLimitRecord)
	return &record, nil
}

func (s *MemoryStore) Create(ctx context.Context, record *models.RateLimitRecord) error {
	now := time.Now()
	stored := *record
	stored.CreatedAt, stored.UpdatedAt = now, now

	if err := s.cache.Add(memoryKey(record.IPAddress, record.Endpoint), stored, s.ttl); err != nil {
		return errors.ErrConflict(err.Error())
	}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, record *models.RateLimitRecord) error {
	stored := *record
	stored.UpdatedAt = time.Now()

	if err := s.cache.Replace(memoryKey(record.IPAddress, record.Endpoint), stored, s.ttl); err != nil {
		return errors.ErrRecordNotFound("rate limit record", memoryKey(record.IPAddress, record.Endpoint))
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, ip, endpoint string) error {
	s.cache.Delete(memoryKey(ip, endpoint))
	return nil
}

// Len returns the number of live records.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

func memoryKey(ip, endpoint string) string {
	return fmt.Sprintf("%s:%s:%s", constants.RateLimitKeyPrefix, endpoint, ip)
}

//Personal.AI order the ending

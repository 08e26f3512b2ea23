package ratelimit

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
)

const testEndpoint = "/api/v1/certificates/verify"

// MockRateLimitRepository is a mock for the RateLimitRepository
type MockRateLimitRepository struct {
	mock.Mock
}

func (m *MockRateLimitRepository) Find(ctx context.Context, ip, endpoint string) (*models.RateLimitRecord, error) {
	args := m.Called(ctx, ip, endpoint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateLimitRecord), args.Error(1)
}

func (m *MockRateLimitRepository) Create(ctx context.Context, record *models.RateLimitRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRateLimitRepository) Update(ctx context.Context, record *models.RateLimitRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRateLimitRepository) Delete(ctx context.Context, ip, endpoint string) error {
	return m.Called(ctx, ip, endpoint).Error(0)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(store *MemoryStore) (*FixedWindowLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewFixedWindowLimiter(store, &LimiterConfig{Window: 5 * time.Minute, Threshold: 10}, clock.Now, logger.NewNoopLogger())
	return limiter, clock
}

func TestFixedWindowLimiter_EleventhRequestDenied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(5 * time.Minute)
	limiter, clock := newTestLimiter(store)

	for i := 1; i <= 10; i++ {
		d := limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
		require.True(t, d.Allowed, "request %d should be allowed", i)
		assert.Equal(t, i, d.Count)
		clock.Advance(time.Second)
	}

	d := limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
	assert.False(t, d.Allowed)
	assert.False(t, d.FailedOpen)
	assert.Equal(t, 5*time.Minute-10*time.Second, d.RetryAfter)

	rec, err := store.Find(ctx, "10.0.0.1", testEndpoint)
	require.NoError(t, err)
	require.NotNil(t, rec.BlockedUntil)
	assert.Equal(t, 11, rec.RequestCount)
	assert.Equal(t, rec.WindowStart.Add(5*time.Minute), *rec.BlockedUntil)
}

func TestFixedWindowLimiter_BlockedRequestsDoNotCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(5 * time.Minute)
	limiter, clock := newTestLimiter(store)

	for i := 0; i < 11; i++ {
		limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
	}
	clock.Advance(time.Minute)

	for i := 0; i < 3; i++ {
		d := limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
		assert.False(t, d.Allowed)
		assert.Equal(t, 4*time.Minute, d.RetryAfter)
	}

	rec, err := store.Find(ctx, "10.0.0.1", testEndpoint)
	require.NoError(t, err)
	assert.Equal(t, 11, rec.RequestCount)
}

func TestFixedWindowLimiter_AllowsAgainAfterWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	limiter, clock := newTestLimiter(store)

	for i := 0; i < 11; i++ {
		limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
	}
	require.False(t, limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint).Allowed)

	clock.Advance(5*time.Minute + time.Second)

	d := limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)

	rec, err := store.Find(ctx, "10.0.0.1", testEndpoint)
	require.NoError(t, err)
	assert.Nil(t, rec.BlockedUntil)
	assert.Equal(t, clock.now, rec.WindowStart)
}

func TestFixedWindowLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(NewMemoryStore(5 * time.Minute))

	for i := 0; i < 11; i++ {
		limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
	}

	assert.False(t, limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint).Allowed)
	assert.True(t, limiter.CheckAndRecord(ctx, "10.0.0.2", testEndpoint).Allowed)
	assert.True(t, limiter.CheckAndRecord(ctx, "10.0.0.1", "/other").Allowed)
}

func TestFixedWindowLimiter_FailsOpenOnReadError(t *testing.T) {
	ctx := context.Background()
	store := new(MockRateLimitRepository)
	store.On("Find", mock.Anything, "10.0.0.1", testEndpoint).Return(nil, goerrors.New("connection refused"))

	limiter := NewFixedWindowLimiter(store, nil, nil, logger.NewNoopLogger())
	d := limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)

	assert.True(t, d.Allowed)
	assert.True(t, d.FailedOpen)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestFixedWindowLimiter_FailsOpenOnWriteError(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("create", func(t *testing.T) {
		store := new(MockRateLimitRepository)
		store.On("Find", mock.Anything, "10.0.0.1", testEndpoint).
			Return(nil, errors.ErrRecordNotFound("rate limit record", "k"))
		store.On("Create", mock.Anything, mock.Anything).Return(goerrors.New("disk full"))

		d := NewFixedWindowLimiter(store, nil, clock, logger.NewNoopLogger()).CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
		assert.True(t, d.Allowed)
		assert.True(t, d.FailedOpen)
	})

	t.Run("block", func(t *testing.T) {
		store := new(MockRateLimitRepository)
		store.On("Find", mock.Anything, "10.0.0.1", testEndpoint).Return(&models.RateLimitRecord{
			IPAddress:    "10.0.0.1",
			Endpoint:     testEndpoint,
			RequestCount: 10,
			WindowStart:  now.Add(-time.Minute),
		}, nil)
		store.On("Update", mock.Anything, mock.Anything).Return(goerrors.New("timeout"))

		d := NewFixedWindowLimiter(store, nil, clock, logger.NewNoopLogger()).CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
		assert.True(t, d.Allowed)
		assert.True(t, d.FailedOpen)
	})
}

func TestFixedWindowLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(5 * time.Minute)
	limiter, _ := newTestLimiter(store)

	for i := 0; i < 11; i++ {
		limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
	}
	require.NoError(t, limiter.Reset(ctx, "10.0.0.1", testEndpoint))

	d := limiter.CheckAndRecord(ctx, "10.0.0.1", testEndpoint)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

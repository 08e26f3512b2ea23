package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/infrastructure/persistence/database"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/logger"
)

func testConfig(backend constants.RateLimitBackend) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, Environment: "test"},
		Database: config.DatabaseConfig{
			Driver:      string(constants.DriverSQLite),
			SQLitePath:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			AutoMigrate: true,
		},
		RateLimit: config.RateLimitConfig{
			Backend:   string(backend),
			Window:    5 * time.Minute,
			Threshold: 10,
		},
		Verification: config.VerificationConfig{HMACKey: "test-key"},
	}
}

func TestNewServer_VerifiesSeededCertificate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := logger.NewNoopLogger()

	c, err := NewServer(ctx, testConfig(constants.RateLimitBackendMemory), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(ctx) })

	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Publisher)

	validUntil := time.Now().UTC().AddDate(1, 0, 0)
	require.NoError(t, database.NewCertificateRepository(c.DB.DB(), log).Save(ctx, &models.Certificate{
		CertificateID:  "PS2506DS148",
		StudentID:      "PS2506DS148",
		HolderName:     "Asha Rao",
		Domain:         "DS",
		IssueDate:      time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		CompletionDate: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		ValidUntil:     &validUntil,
		IsActive:       true,
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, constants.EndpointCertificateVerify, strings.NewReader(`{"certificate_id":"ps2506ds148"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Router.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])

	health := httptest.NewRecorder()
	c.Router.Engine().ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestNewServer_MissingKey(t *testing.T) {
	cfg := testConfig(constants.RateLimitBackendDatabase)
	cfg.Verification.HMACKey = ""

	_, err := NewServer(context.Background(), cfg, logger.NewNoopLogger())
	assert.Error(t, err)
}

func TestNewStorage_RedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig(constants.RateLimitBackendRedis)
	cfg.Redis.Addresses = []string{mr.Addr()}

	c, err := NewStorage(ctx, cfg, logger.NewNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(ctx) })

	require.NotNil(t, c.Redis)
	decision := c.Limiter.CheckAndRecord(ctx, "10.0.0.1", constants.EndpointCertificateVerify)
	assert.True(t, decision.Allowed)
	assert.False(t, decision.FailedOpen)
	assert.Len(t, mr.Keys(), 1)
}

func TestNewStorage_DatabaseBackend(t *testing.T) {
	ctx := context.Background()
	c, err := NewStorage(ctx, testConfig(constants.RateLimitBackendDatabase), logger.NewNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(ctx) })

	for i := 0; i < 10; i++ {
		require.True(t, c.Limiter.CheckAndRecord(ctx, "10.0.0.2", constants.EndpointCertificateVerify).Allowed)
	}
	assert.False(t, c.Limiter.CheckAndRecord(ctx, "10.0.0.2", constants.EndpointCertificateVerify).Allowed)

	require.NoError(t, c.Limiter.Reset(ctx, "10.0.0.2", constants.EndpointCertificateVerify))
	assert.True(t, c.Limiter.CheckAndRecord(ctx, "10.0.0.2", constants.EndpointCertificateVerify).Allowed)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prismstudio/certverify/internal/application/dto"
	"github.com/prismstudio/certverify/internal/application/service"
	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/infrastructure/crypto"
	"github.com/prismstudio/certverify/internal/infrastructure/monitoring"
	"github.com/prismstudio/certverify/internal/infrastructure/persistence/database"
	"github.com/prismstudio/certverify/internal/infrastructure/ratelimit"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/logger"
)

const verifyPath = "/api/v1/certificates/verify"

type testEnv struct {
	router *gin.Engine
	logs   *database.VerificationLogRepoImpl
	now    time.Time
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := logger.NewNoopLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	conn := database.NewDBConnectionFromGorm(db, constants.DriverSQLite, log)
	require.NoError(t, conn.AutoMigrate(ctx))
	t.Cleanup(func() { _ = conn.Close() })

	env := &testEnv{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return env.now }

	certs := database.NewCertificateRepository(db, log)
	future := env.now.AddDate(1, 0, 0)
	past := env.now.AddDate(0, 0, -10)
	for _, c := range []*models.Certificate{
		newCertificate("PS2506DS148", &future, true),
		newCertificate("PS2412EP099", &past, true),
		newCertificate("PS2507UD025", &future, false),
	} {
		require.NoError(t, certs.Save(ctx, c))
	}

	env.logs = database.NewVerificationLogRepository(db)
	hasher, err := crypto.NewHMACHasher([]byte("test-key"))
	require.NoError(t, err)

	limiter := ratelimit.NewFixedWindowLimiter(ratelimit.NewMemoryStore(constants.RateLimitWindow), nil, clock, log)
	svc := service.NewVerificationAppService(limiter, certs, env.logs, hasher,
		service.DefaultIssuerInfo(), clock, monitoring.NewMetrics(prometheus.NewRegistry()), log)

	renderer := dto.NewErrorRenderer(constants.DefaultSupportContact)
	renderer.Now = clock
	h := NewVerificationHandler(svc, renderer, log)

	env.router = gin.New()
	env.router.POST(verifyPath, h.VerifyPost)
	env.router.GET(verifyPath, h.VerifyGet)
	return env
}

func newCertificate(id string, validUntil *time.Time, active bool) *models.Certificate {
	issued := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	return &models.Certificate{
		CertificateID:   id,
		StudentID:       "STU-" + id,
		HolderName:      "Ravi Kumar",
		IssueDate:       issued,
		CompletionDate:  issued,
		ValidUntil:      validUntil,
		Skills:          []string{"Go"},
		Grade:           "A",
		IsActive:        active,
		CertificateHash: "hash-" + id,
	}
}

func (e *testEnv) post(body string, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, verifyPath, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.HeaderForwardedFor, ip+", 10.0.0.1")
	req.Header.Set(constants.HeaderUserAgent, "handler-test")
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestVerifyPost_Success(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(`{"certificate_id": "PS2506DS148"}`, "198.51.100.23")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])

	cert := body["certificate"].(map[string]interface{})
	assert.Equal(t, "PS2506DS148", cert["certificateId"])
	assert.Equal(t, "Data Science", cert["domain"])
	assert.Equal(t, false, cert["isExpired"])
	assert.Equal(t, 365.0, cert["daysUntilExpiry"])

	details := body["verificationDetails"].(map[string]interface{})
	assert.Equal(t, "198.51.100.xxx", details["clientIp"])
	assert.Len(t, details["verificationHash"], 64)

	issuer := body["issuer"].(map[string]interface{})
	assert.Equal(t, constants.IssuerName, issuer["name"])
}

func TestVerifyPost_Expired(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(`{"certificate_id": "PS2412EP099"}`, "198.51.100.23")
	require.Equal(t, http.StatusOK, w.Code)

	cert := decode(t, w)["certificate"].(map[string]interface{})
	assert.Equal(t, true, cert["isExpired"])
	assert.Equal(t, "Embedded Programming", cert["domain"])
}

func TestVerifyPost_NotFoundWritesOneFailedLog(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(`{"certificate_id": "PS2506ZZ999"}`, "198.51.100.23")
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "PS2506ZZ999", body["certificateId"])
	assert.Equal(t, constants.DefaultSupportContact, body["supportContact"])
	assert.Equal(t, "2026-03-01T12:00:00.000Z", body["timestamp"])

	count, err := env.logs.CountByCertificateID(context.Background(), "PS2506ZZ999")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestVerifyPost_RevokedIsNotFound(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(`{"certificate_id": "PS2507UD025"}`, "198.51.100.23")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyPost_InvalidFormat(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(`{"certificate_id": "PS25DS1"}`, "198.51.100.23")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, constants.CertificateIDFormatHint, body["format_hint"])

	count, err := env.logs.CountByCertificateID(context.Background(), "PS25DS1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestVerifyPost_MalformedBody(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(`{not json`, "198.51.100.23")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyPost_RateLimited(t *testing.T) {
	env := setupTestEnv(t)

	for i := 0; i < constants.RateLimitThreshold; i++ {
		w := env.post(`{"certificate_id": "PS2506DS148"}`, "192.0.2.7")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := env.post(`{"certificate_id": "PS2506DS148"}`, "192.0.2.7")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 300.0, body["retryAfter"])
	assert.Equal(t, strconv.Itoa(300), w.Header().Get(constants.HeaderRetryAfter))

	// rate-limited attempts are not logged
	count, err := env.logs.CountByCertificateID(context.Background(), "PS2506DS148")
	require.NoError(t, err)
	assert.Equal(t, int64(constants.RateLimitThreshold), count)

	// other clients are unaffected
	assert.Equal(t, http.StatusOK, env.post(`{"certificate_id": "PS2506DS148"}`, "192.0.2.8").Code)

	env.now = env.now.Add(constants.RateLimitWindow + time.Second)
	assert.Equal(t, http.StatusOK, env.post(`{"certificate_id": "PS2506DS148"}`, "192.0.2.7").Code)
}

func TestVerifyGet(t *testing.T) {
	env := setupTestEnv(t)

	for _, query := range []string{"certificate_id=PS2506DS148", "id=PS2506DS148"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, verifyPath+"?"+query, nil)
		req.Header.Set(constants.HeaderRealIP, "203.0.113.5")
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, query)
		details := decode(t, w)["verificationDetails"].(map[string]interface{})
		assert.Equal(t, "203.0.113.xxx", details["clientIp"])
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/schoolcms/server/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCorrelationIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := CorrelationID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.NotEmpty(t, seen)
	require.Equal(t, seen, res.Header().Get("X-Request-ID"))
}

func TestCorrelationIDReusesProxyHeader(t *testing.T) {
	handler := CorrelationID(zerolog.Nop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, "upstream-id", res.Header().Get("X-Request-ID"))
}

func TestCORSAllowsWhitelistedOrigin(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://school.example"}}
	handler := CORS(cfg, zerolog.Nop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://school.example")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, "https://school.example", res.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://school.example"}}
	handler := CORS(cfg, zerolog.Nop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://evil.example")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Empty(t, res.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	cfg := config.CORSConfig{AllowAllOrigins: true}
	called := false
	handler := CORS(cfg, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.False(t, called)
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 2}
	handler := WithRateLimitTierHandler(TierLogin)(RateLimit(cfg)(okHandler()))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:50000"
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusTooManyRequests, res.Code)
	require.Equal(t, "180", res.Header().Get("Retry-After"))
}

func TestRateLimitSeparatesClients(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 1}
	handler := WithRateLimitTierHandler(TierLogin)(RateLimit(cfg)(okHandler()))

	first := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	first.RemoteAddr = "10.0.0.1:50000"
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, first)
	require.Equal(t, http.StatusOK, res.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	second.RemoteAddr = "10.0.0.2:50000"
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, second)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestRateLimitUnlimitedWhenZero(t *testing.T) {
	handler := RateLimit(config.RateLimitConfig{})(okHandler())

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
	}
}

func TestRateLimitCleanupEvictsStaleClients(t *testing.T) {
	store := newLimiterStore(config.RateLimitConfig{PublicPerMinute: 10})
	store.limiter(TierPublic, "10.0.0.1")
	store.limiter(TierPublic, "10.0.0.2")

	store.mu.Lock()
	for _, entry := range store.limiters {
		entry.lastSeen = time.Now().Add(-time.Hour)
	}
	store.mu.Unlock()

	store.cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Empty(t, store.limiters)
}

func TestRequestSizeCapsBody(t *testing.T) {
	handler := RequestSize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		if _, err := r.Body.Read(buf); err != nil {
			if _, ok := err.(*http.MaxBytesError); ok {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(strings.Repeat("x", 64)))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	handler := Recovery()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Contains(t, res.Body.String(), "internal server error")
}

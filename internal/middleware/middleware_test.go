package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/models"
	"cityconnect/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(t *testing.T) *security.TokenManager {
	t.Helper()
	tokens, err := security.NewTokenManager([]string{"k1:middleware-secret"}, time.Hour)
	require.NoError(t, err)
	return tokens
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func newAuthRouter(t *testing.T) (*gin.Engine, *security.TokenManager) {
	tokens := newTokens(t)
	router := gin.New()
	router.GET("/me", Auth(tokens), func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.UserID})
	})
	router.GET("/admin", Auth(tokens), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, tokens
}

func TestAuthDistinguishesMissingAndInvalidTokens(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_token", errorCode(t, rec))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rec))
}

func TestAuthAcceptsHeaderAndQueryTokens(t *testing.T) {
	router, tokens := newAuthRouter(t)
	token, err := tokens.Issue("u1", models.RoleCitizen)
	require.NoError(t, err)

	for name, build := range map[string]func() *http.Request{
		"bearer": func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			return req
		},
		"bare": func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", token)
			return req
		},
		"query": func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
		},
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, build())
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id":"u1"}`, rec.Body.String())
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	router, tokens := newAuthRouter(t)

	for role, want := range map[models.Role]int{
		models.RoleCitizen: http.StatusForbidden,
		models.RoleAdmin:   http.StatusNoContent,
	} {
		token, err := tokens.Issue("u1", role)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)
	limit, err := RateLimit(store, "2-M", zerolog.Nop())
	require.NoError(t, err)

	router := gin.New()
	router.POST("/login", limit, func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitRejectsBadFormat(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)
	_, err = RateLimit(store, "lots", zerolog.Nop())
	assert.Error(t, err)
}

func TestMetricsUseRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/groups/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/groups/"+id, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/groups/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRequestIDAndCORS(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), CORS([]string{"https://city.example"}))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://city.example")
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, rec.Header().Get(requestIDHeader), rec.Body.String())
	assert.Equal(t, "https://city.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set(requestIDHeader, "given-id")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "given-id", rec.Header().Get(requestIDHeader))
}

func TestRecoveryHidesPanics(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", errorCode(t, rec))
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetquote/internal/auth"
	"github.com/ukydev/fleetquote/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, svc *auth.Service, role models.Role) string {
	t.Helper()
	token, err := svc.GenerateToken(&models.User{
		ID:       primitive.NewObjectID(),
		TenantID: "tenant-1",
		Username: string(role),
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService, _ := auth.NewService(auth.Config{Secret: "test"})
	m := NewAuthMiddleware(authService)

	r := gin.New()
	r.GET("/api/vehicles", m.Authenticate(), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.TenantID)
	})

	t.Run("valid token", func(t *testing.T) {
		w := serve(r, "GET", "/api/vehicles", tokenFor(t, authService, models.RoleOperator))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tenant-1", w.Body.String())
	})

	t.Run("missing authorization header", func(t *testing.T) {
		w := serve(r, "GET", "/api/vehicles", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := serve(r, "GET", "/api/vehicles", "invalid-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	authService, _ := auth.NewService(auth.Config{Secret: "test"})
	m := NewAuthMiddleware(authService)

	r := gin.New()
	r.GET("/manager", m.Authenticate(), m.RequireRole(models.RoleManager), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", m.Authenticate(), m.RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/no-auth", m.RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "GET", "/manager", tokenFor(t, authService, models.RoleAdmin)).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/manager", tokenFor(t, authService, models.RoleManager)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/admin", tokenFor(t, authService, models.RoleManager)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/no-auth", "").Code)
}

func TestAuthMiddleware_RequirePermission(t *testing.T) {
	authService, _ := auth.NewService(auth.Config{Secret: "test"})
	m := NewAuthMiddleware(authService)

	r := gin.New()
	r.POST("/api/quotations", m.Authenticate(), m.RequirePermission(models.ActionCreateQuotation), func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.PUT("/api/parameters/1", m.Authenticate(), m.RequirePermission(models.ActionManageParameters), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		role   models.Role
		method string
		path   string
		want   int
	}{
		{"operator creates quotation", models.RoleOperator, "POST", "/api/quotations", http.StatusCreated},
		{"viewer cannot create quotation", models.RoleViewer, "POST", "/api/quotations", http.StatusForbidden},
		{"manager edits parameters", models.RoleManager, "PUT", "/api/parameters/1", http.StatusOK},
		{"operator cannot edit parameters", models.RoleOperator, "PUT", "/api/parameters/1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tokenFor(t, authService, tt.role))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestTenantID_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", TenantID(c))

	c.Set(claimsKey, &auth.Claims{TenantID: "t9"})
	assert.Equal(t, "t9", TenantID(c))
}

func TestRateLimit_Memory(t *testing.T) {
	logger, _ := test.NewNullLogger()
	limiter := NewMemoryLimiter()

	r := gin.New()
	r.POST("/api/auth/login", RateLimit(limiter, "login", 2, time.Minute, logger), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "POST", "/api/auth/login", "").Code)
	w := serve(r, "POST", "/api/auth/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "POST", "/api/auth/login", "").Code)
}

func TestMemoryLimiter_WindowExpires(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ok, _, _ := limiter.Allow(context.Background(), "k", 1, time.Minute)
	assert.True(t, ok)
	ok, _, _ = limiter.Allow(context.Background(), "k", 1, time.Minute)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, remaining, _ := limiter.Allow(context.Background(), "k", 1, time.Minute)
	assert.True(t, ok)
	assert.Equal(t, int64(0), remaining)
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _, _ := limiter.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, ok)
	now = now.Add(50 * time.Second)
	ok, _, _ = limiter.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, ok)

	// The window opened at the first hit, so it resets 60s after it even
	// though the second hit was recent.
	now = now.Add(15 * time.Second)
	ok, remaining, _ := limiter.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, ok)
	assert.Equal(t, int64(1), remaining)
}

func TestMemoryLimiter_EvictsExpiredKeys(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, _, _ = limiter.Allow(ctx, "login:"+ip, 5, time.Minute)
	}
	_, _, _ = limiter.Allow(ctx, "register:10.0.0.1", 5, time.Hour)
	assert.Len(t, limiter.windows, 4)

	now = now.Add(2 * time.Minute)
	_, _, _ = limiter.Allow(ctx, "login:10.0.0.9", 5, time.Minute)

	assert.Len(t, limiter.windows, 2)
	assert.Contains(t, limiter.windows, "register:10.0.0.1")
	assert.Contains(t, limiter.windows, "login:10.0.0.9")
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimit_LimiterFailureFailsOpen(t *testing.T) {
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.POST("/login", RateLimit(failingLimiter{}, "login", 1, time.Minute, logger), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "POST", "/login", "").Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis limiter test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	limiter := NewRedisLimiter(client)
	key := "test:" + primitive.NewObjectID().Hex()
	defer client.Del(ctx, "ratelimit:"+key)

	ok, remaining, err := limiter.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), remaining)

	_, _, _ = limiter.Allow(ctx, key, 2, time.Minute)
	ok, _, err = limiter.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, "ratelimit:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// Hits inside the window do not push the expiry out.
	require.NoError(t, client.Expire(ctx, "ratelimit:"+key, 30*time.Second).Err())
	_, _, err = limiter.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	ttl, err = client.TTL(ctx, "ratelimit:"+key).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestRecoveryAndRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RequestLogger(logger), Recovery(logger))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "GET", "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Panic recovered", entries[0].Message)
	assert.Equal(t, "Request failed", entries[1].Message)

	hook.Reset()
	serve(r, "GET", "/ok", "")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "/ok", hook.LastEntry().Data["path"])
}

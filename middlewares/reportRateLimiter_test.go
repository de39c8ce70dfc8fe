package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"urbanfix-be/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func limiterTestRouter(limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reports",
		func(c *gin.Context) { c.Set("user_id", "user-1") },
		ReportRateLimiter(limit),
		func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) },
	)
	return r
}

func TestReportRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	config.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { config.RedisClient = nil }()

	r := limiterTestRouter(3)

	post := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reports", nil)
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, post(), "request %d should pass", i+1)
	}

	assert.Equal(t, http.StatusTooManyRequests, post())

	// The counter key expires after a day; once it does, the user may
	// submit again.
	mr.FastForward(25 * time.Hour)
	assert.Equal(t, http.StatusCreated, post())
}

func TestReportRateLimiterRequiresUser(t *testing.T) {
	mr := miniredis.RunT(t)
	config.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { config.RedisClient = nil }()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reports", ReportRateLimiter(3), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reports", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

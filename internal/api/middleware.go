// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Corphon/NovelForge/internal/utils"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID adopts the caller's X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request once it has been served.
func RequestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(requestIDKey),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("http request", fields)
		case status >= http.StatusBadRequest:
			logger.Warn("http request", fields)
		default:
			logger.Info("http request", fields)
		}
	}
}

// RequestMetrics counts requests per route template and failed responses per code.
func RequestMetrics(metrics *utils.RequestMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := routeName(c.FullPath())
		status := c.Writer.Status()
		metrics.RecordRequest(endpoint, c.Request.Method, status, time.Since(start))
		if status >= http.StatusBadRequest {
			metrics.RecordError(fmt.Sprintf("HTTP_%d", status), c.Request.Method+" "+endpoint)
		}
	}
}

// routeName turns "/api/novels/:novelId/scenes/:id/reorder" into
// "novels_scenes_id_reorder".
func routeName(fullPath string) string {
	if fullPath == "" {
		return "unmatched"
	}
	var parts []string
	for _, p := range strings.Split(strings.TrimPrefix(fullPath, "/api/"), "/") {
		switch {
		case p == "" || p == ":novelId":
		case strings.HasPrefix(p, ":"):
			parts = append(parts, "id")
		default:
			parts = append(parts, strings.ReplaceAll(p, "-", "_"))
		}
	}
	return strings.Join(parts, "_")
}

// RateLimiter is a fixed-window limiter keyed by client.
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

// Visitor is one client's current window.
type Visitor struct {
	Remaining int
	Reset     time.Time
}

// NewRateLimiter allows limit requests per window per key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*Visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow consumes one request for key and reports whether it fits the window,
// along with the remaining budget and the window reset.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.visitors) > 1024 {
		rl.pruneLocked(now)
	}

	visitor, exists := rl.visitors[key]
	if !exists || now.After(visitor.Reset) {
		visitor = &Visitor{Remaining: rl.limit, Reset: now.Add(rl.window)}
		rl.visitors[key] = visitor
	}
	if visitor.Remaining <= 0 {
		return false, 0, visitor.Reset
	}
	visitor.Remaining--
	return true, visitor.Remaining, visitor.Reset
}

func (rl *RateLimiter) pruneLocked(now time.Time) {
	for key, visitor := range rl.visitors {
		if now.After(visitor.Reset) {
			delete(rl.visitors, key)
		}
	}
}

// RateLimitByIP applies rl per client IP.
func RateLimitByIP(rl *RateLimiter, response *ResponseHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, reset := rl.Allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
		if !ok {
			response.Error(c, http.StatusTooManyRequests, ErrorRateLimited, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

// corsMiddleware allows browser editors on other origins.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/chatrelay/internal/config"
	"github.com/liliang-cn/chatrelay/internal/domain"
	"golang.org/x/time/rate"
)

const rateLimitedReply = "Too many requests."

// pruneThreshold caps the tracked-client map before stale entries are evicted.
const pruneThreshold = 1024

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns a per-client-address admission-control middleware. Each
// client gets a token bucket allowing MaxRequests per Window. State is
// in-memory only; restarting the server resets all buckets.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MaxRequests <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limit := rate.Every(cfg.Window / time.Duration(cfg.MaxRequests))

	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			if len(clients) >= pruneThreshold {
				pruneStale(clients, cfg.Window)
			}
			cl = &clientLimiter{limiter: rate.NewLimiter(limit, cfg.MaxRequests)}
			clients[ip] = cl
		}
		cl.lastSeen = time.Now()
		mu.Unlock()

		if !cl.limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, domain.ChatResponse{Reply: rateLimitedReply})
			c.Abort()
			return
		}

		c.Next()
	}
}

// pruneStale drops clients idle for more than three windows. Caller holds
// the lock.
func pruneStale(clients map[string]*clientLimiter, window time.Duration) {
	cutoff := time.Now().Add(-3 * window)
	for ip, cl := range clients {
		if cl.lastSeen.Before(cutoff) {
			delete(clients, ip)
		}
	}
}

package http

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; stale entries are evicted once it
// is exceeded. Webhook traffic comes from a small set of platform egress IPs,
// so the bound exists for abusive traffic, not normal operation.
const maxTrackedClients = 10000

// staleClientAge is how long an idle client keeps its limiter state.
const staleClientAge = 10 * time.Minute

// clientLimiter tracks one client's token bucket.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware returns a Gin middleware applying a per-client-IP token
// bucket. Requests over the limit receive 429; the platform treats that as a
// redelivery signal, which is safe because rejected requests were never admitted.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		now := time.Now()

		mu.Lock()
		entry, ok := clients[clientIP]
		if !ok {
			if len(clients) >= maxTrackedClients {
				evictStaleClients(clients, now)
			}
			entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[clientIP] = entry
		}
		entry.lastSeen = now
		mu.Unlock()

		if !entry.limiter.Allow() {
			logger.Warn("rate limit exceeded", slog.String("client_ip", clientIP))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
			return
		}

		c.Next()
	}
}

// evictStaleClients drops idle entries. Caller holds the lock.
func evictStaleClients(clients map[string]*clientLimiter, now time.Time) {
	cutoff := now.Add(-staleClientAge)
	for ip, entry := range clients {
		if entry.lastSeen.Before(cutoff) {
			delete(clients, ip)
		}
	}
}

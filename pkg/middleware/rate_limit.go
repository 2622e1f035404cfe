package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/authordata/author-service/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// limiterKey is the client IP, or "unknown" when gin cannot determine one.
func limiterKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

const (
	// maxTrackedClients bounds the number of per-IP limiters held in memory.
	maxTrackedClients = 10000
	// limiterTTL drops a client's limiter this long after it was created;
	// the next request starts with a full bucket.
	limiterTTL = 10 * time.Minute
)

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket limit per client IP.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return rateLimit(rps, burst, maxTrackedClients, limiterTTL)
}

func rateLimit(rps float64, burst, size int, ttl time.Duration) gin.HandlerFunc {
	limiters := expirable.NewLRU[string, *rate.Limiter](size, nil, ttl)
	var mu sync.Mutex
	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters.Get(key); ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), burst)
		limiters.Add(key, l)
		return l
	}
	return func(c *gin.Context) {
		if !get(limiterKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

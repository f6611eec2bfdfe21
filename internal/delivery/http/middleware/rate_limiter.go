package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// windowEntry tracks the request count of one client in the current window.
type windowEntry struct {
	count int
	start time.Time
}

// RateLimiter returns a middleware that allows at most maxRequests per minute
// per client IP. A non-positive maxRequests disables limiting. Stale entries
// are pruned until ctx is cancelled.
func RateLimiter(ctx context.Context, maxRequests int) gin.HandlerFunc {
	if maxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var mu sync.Mutex
	clients := make(map[string]*windowEntry)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				now := time.Now()
				for ip, entry := range clients {
					if now.Sub(entry.start) > 2*time.Minute {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	limitMsg := "rate limit exceeded: maximum " + strconv.Itoa(maxRequests) + " requests per minute"

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		entry, exists := clients[ip]
		if !exists || now.Sub(entry.start) > time.Minute {
			clients[ip] = &windowEntry{count: 1, start: now}
			mu.Unlock()
			c.Next()
			return
		}

		if entry.count >= maxRequests {
			mu.Unlock()
			c.Header("Retry-After", strconv.Itoa(int(time.Until(entry.start.Add(time.Minute)).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": limitMsg})
			return
		}

		entry.count++
		mu.Unlock()
		c.Next()
	}
}

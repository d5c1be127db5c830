package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// RemainingCounter reports how many retrievals would be admitted right now.
type RemainingCounter interface {
	Remaining() int
}

// RateLimitHeaders advertises the shared admission budget. Remaining counts
// this request as admitted; concurrent requests can make it stale.
func RateLimitHeaders(counter RemainingCounter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining := counter.Remaining()
		if remaining > 0 {
			remaining--
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl sets a public Cache-Control max-age on every response.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}

// NoStore marks responses as uncacheable. Used for personal results and
// admin data.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// SetMaxAge sets a public max-age from a duration, rounded down to whole
// seconds. Handlers call it when the lifetime depends on the response, like
// the remaining time of a question rotation window.
func SetMaxAge(c *gin.Context, d time.Duration) {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", secs))
}

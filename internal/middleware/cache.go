package middleware

import "github.com/gin-gonic/gin"

// NoStore marks responses as uncacheable. Quiz state changes every second.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

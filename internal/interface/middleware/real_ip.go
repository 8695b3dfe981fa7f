package middleware

import (
	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into Gin context (key: "real_ip").
// Forwarding headers are honoured only when the engine trusts the peer
// (Engine.SetTrustedProxies) or a platform header (Engine.TrustedPlatform);
// otherwise the socket address is used.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// proxy headers checked in order before falling back to RemoteAddr
var clientIPHeaders = []string{"X-Real-Ip", "CF-Connecting-IP", "X-Forwarded"}

// AuditMiddleware extracts and stores the client IP for audit logging
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("client_ip", getClientIP(c))
		c.Next()
	}
}

func getClientIP(c *gin.Context) string {
	// X-Forwarded-For may hold a chain, the first hop is the client
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); isValidIP(ip) {
			return ip
		}
	}

	for _, h := range clientIPHeaders {
		if ip := strings.TrimSpace(c.GetHeader(h)); ip != "" && isValidIP(ip) {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// GetIPFromContext retrieves the IP stored by AuditMiddleware
func GetIPFromContext(c *gin.Context) string {
	if ip := c.GetString("client_ip"); ip != "" {
		return ip
	}
	return getClientIP(c)
}

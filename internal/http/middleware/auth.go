package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Notho-freedom/Autoresponder/internal/auth"
)

// BearerAuth rejects requests whose Authorization header does not carry the
// configured bearer token. Rejections are 401 with the standard error body.
func BearerAuth(gate auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gate.Verify(c.GetHeader("Authorization")) {
			c.Next()
			return
		}
		c.Header("WWW-Authenticate", `Bearer realm="autoresponder"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "unauthorized",
			"message":    "Unauthorized",
		})
	}
}

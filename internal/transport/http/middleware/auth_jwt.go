package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"memorial-records-api/internal/core/auth"
	resp "memorial-records-api/internal/transport/http/response"
)

// OptionalAuth 能解出 token 就放 userId 进上下文，解不出也放行（/whoami 用）。
func OptionalAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if strings.HasPrefix(ah, "Bearer ") {
			if claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer ")); err == nil {
				c.Set("userId", claims.UID)
			}
		}
		c.Next()
	}
}

// AdminOnly 写操作入口：要求 token 且 uid 在白名单。enabled=false 时不设防。
func AdminOnly(j *auth.JWTer, adminIDs []string, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if !auth.IsAdmin(claims.UID, adminIDs) {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("userId", claims.UID)
		c.Next()
	}
}

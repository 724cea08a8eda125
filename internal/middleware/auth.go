package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth guards generation endpoints. The key may arrive as a
// Bearer token, an x-api-key header, or a ?key= query parameter (the
// browser EventSource API cannot set headers). An empty key list
// disables the check.
func APIKeyAuth(keys []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}

		key := bearerOrRaw(c.GetHeader("Authorization"))
		if key == "" {
			key = c.GetHeader("x-api-key")
		}
		if key == "" {
			key = c.Query("key")
		}

		if _, ok := allowed[key]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"message": "Invalid or missing API key",
					"type":    "authentication_error",
				},
			})
			return
		}
		c.Next()
	}
}

// ManagementAuth guards destructive endpoints with a validator closure
// so the bcrypt comparison stays in the config package.
func ManagementAuth(validate func(string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearerOrRaw(c.GetHeader("Authorization"))
		if key == "" {
			key = c.GetHeader("x-api-key")
		}
		if validate == nil || !validate(key) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"message": "Management key required",
					"type":    "permission_error",
				},
			})
			return
		}
		c.Next()
	}
}

func bearerOrRaw(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

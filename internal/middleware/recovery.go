package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"slidecast-go/internal/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Recovery converts handler panics into a 500 response instead of
// tearing down the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(log.Fields{
					"error":     err,
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": c.ClientIP(),
				}).Error("Panic recovered")

				body := gin.H{
					"message": "Internal server error",
					"type":    "internal_error",
					"code":    "panic_recovered",
				}
				// Panic values only leave the process in debug mode.
				if m := config.GetManager(); m != nil && m.Config().Security.Debug {
					body["detail"] = fmt.Sprint(err)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": body})
			}
		}()

		c.Next()
	}
}

// SafeGo starts a goroutine with panic recovery.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(log.Fields{
					"goroutine": name,
					"error":     err,
					"stack":     string(debug.Stack()),
				}).Error("Goroutine panic recovered")
			}
		}()
		fn()
	}()
}

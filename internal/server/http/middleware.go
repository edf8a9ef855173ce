package httpserver

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/service"
)

// Context keys set by the auth middleware.
const (
	userIDKey = "userID"
	roleKey   = "role"
)

// Logging emits one structured log line per request, metadata only.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		)
	}
}

// Recover turns handler panics into 500s instead of dropped connections.
func Recover(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal", "internal error"))
			}
		}()
		c.Next()
	}
}

// Auth validates the Bearer token and stores the caller's identity in the
// request context.
func Auth(signKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthorized", "missing or invalid token"))
			return
		}
		claims, err := service.ParseAccessToken(strings.TrimSpace(token), signKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthorized", "missing or invalid token"))
			return
		}
		uid, err := uuid.FromString(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthorized", "missing or invalid token"))
			return
		}
		c.Set(userIDKey, uid)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(roleKey) != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("forbidden", "admin role required"))
			return
		}
		c.Next()
	}
}

// callerID returns the authenticated user's id from the request context.
func callerID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

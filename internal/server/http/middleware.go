package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/server/auth"
)

// accessLog records one line per request. Only the path is logged, the
// query string may carry an activation token.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic in handler", "path", c.Request.URL.Path, "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{"InternalError", "internal error"})
	})
}

func (s *Server) timeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.requestTimeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireIdentity authenticates the x-api-key header and stores the
// identity in the request context for this request only.
func (s *Server) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := s.guard.Authenticate(c.Request.Header.Values(common.APIKeyHeaderName))
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// identity returns the caller authenticated by requireIdentity.
func identity(c *gin.Context) *auth.Identity {
	id, _ := auth.IdentityFromContext(c.Request.Context())
	return id
}

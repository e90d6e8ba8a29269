package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wolfstreet/internal/domain"
	"wolfstreet/internal/service"
)

const sessionUserKey = "sessionUser"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}

// requireSession admits the request only while somebody occupies the
// currentUser slot. When tokens are enabled the bearer token must belong to
// that user, so signing out or a different login invalidates older tokens.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := h.resolveSession(c)
		if err != nil {
			if errors.Is(err, service.ErrNotLoggedIn) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please log in to continue"})
				return
			}
			h.writeError(c, err)
			return
		}

		c.Set(sessionUserKey, *current)
		c.Next()
	}
}

// resolveSession returns the currentUser snapshot the request is entitled to
// act as.
func (h *Handler) resolveSession(c *gin.Context) (*domain.User, error) {
	current, err := h.accounts.Current(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if h.tokens != nil {
		userID, err := h.tokens.Parse(bearerToken(c))
		if err != nil {
			return nil, err
		}
		if userID != current.ID {
			return nil, service.ErrSessionChanged
		}
	}
	return current, nil
}

func sessionUser(c *gin.Context) domain.User {
	if v, ok := c.Get(sessionUserKey); ok {
		if user, ok := v.(domain.User); ok {
			return user
		}
	}
	return domain.User{}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

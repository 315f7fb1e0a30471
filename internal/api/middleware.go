package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"food-order-service/internal/models"
	"food-order-service/internal/service"
	"food-order-service/internal/util"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// authRequired parses the Bearer token and attaches the caller identity
// to the request context. Requests without a valid token get a 401.
func authRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is missing"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := service.ParseToken(jwtSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, models.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			IsStaff:  claims.IsStaff,
		})

		c.Next()
	}
}

// staffOnly rejects non-staff callers. Must run after authRequired.
func staffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(models.Identity); ok {
			return id
		}
	}
	return models.Identity{}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

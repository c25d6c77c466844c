package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/dto"
	"github.com/Kiran9223/service-link-sub000/pkg/auth"
)

const (
	// ContextKeyActor is the gin context key holding the authenticated actor
	ContextKeyActor = "actor"
)

// Auth validates the Bearer token and stores the resulting actor in the
// request context. Requests without a valid token are rejected.
func Auth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing bearer token"})
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
			return
		}

		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// RequireRole rejects requests whose actor is not one of the given roles.
// Admins always pass.
func RequireRole(roles ...domain.ActorRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "not authenticated"})
			return
		}
		if actor.Role == domain.RoleAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "insufficient role"})
	}
}

// GetActor extracts the authenticated actor from the gin context
func GetActor(c *gin.Context) (domain.Actor, bool) {
	v, exists := c.Get(ContextKeyActor)
	if !exists {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

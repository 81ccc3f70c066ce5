package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/interfaces/http/dto"
)

// Context keys for actor identity
const (
	// ActorIDKey is the gin context key holding the acting user's ID
	ActorIDKey = "actor_id"
	// ActorRoleKey is the gin context key holding the acting user's role
	ActorRoleKey = "actor_role"

	// ActorIDHeader carries the acting user's ID, asserted upstream by the
	// identity gateway
	ActorIDHeader = "X-Actor-ID"
	// ActorRoleHeader carries the acting user's payroll role
	ActorRoleHeader = "X-Actor-Role"
)

// Actor extracts the acting user's identity from the gateway headers and
// stores it in the request context. Requests without an actor pass through;
// handlers that mutate state reject them individually, so read-only
// endpoints stay reachable without identity.
func Actor(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorIDHeader)
		actorRole := c.GetHeader(ActorRoleHeader)

		if actorID != "" {
			if _, err := uuid.Parse(actorID); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeUnauthorized,
					"Malformed actor ID",
					c.GetString("request_id"),
				))
				return
			}
			c.Set(ActorIDKey, actorID)
		}
		if actorRole != "" {
			c.Set(ActorRoleKey, actorRole)
		}

		// Enrich the request-scoped logger so every line downstream carries
		// the actor identity
		if actorID != "" || actorRole != "" {
			reqLogger := logger
			if l, exists := c.Get("logger"); exists {
				if scoped, ok := l.(*zap.Logger); ok {
					reqLogger = scoped
				}
			}
			fields := make([]zap.Field, 0, 2)
			if actorID != "" {
				fields = append(fields, zap.String("actor_id", actorID))
			}
			if actorRole != "" {
				fields = append(fields, zap.String("actor_role", actorRole))
			}
			c.Set("logger", reqLogger.With(fields...))
		}

		c.Next()
	}
}

// RequireActor aborts the request when no actor identity is present. Mount it
// on route groups whose every operation needs an accountable actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"Actor identity is required",
				c.GetString("request_id"),
			))
			return
		}
		c.Next()
	}
}

// GetActorID retrieves the actor ID from gin context
func GetActorID(c *gin.Context) string {
	return c.GetString(ActorIDKey)
}

// GetActorRole retrieves the actor role from gin context
func GetActorRole(c *gin.Context) string {
	return c.GetString(ActorRoleKey)
}

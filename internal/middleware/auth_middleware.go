package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

const (
	MemberKey   = "member"
	MemberIDKey = "member_id"
)

// Authenticator resolves a bearer token to a member.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Member, error)
}

// JWTAuthMiddleware rejects the request unless it carries a bearer token that
// resolves to an existing member.
func JWTAuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		member, err := authenticator.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			log.Printf("❌ authentication failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}

		c.Set(MemberKey, member)
		c.Set(MemberIDKey, member.ID)
		c.Next()
	}
}

// CurrentMember returns the member JWTAuthMiddleware stored on the context.
func CurrentMember(c *gin.Context) (*model.Member, bool) {
	v, exists := c.Get(MemberKey)
	if !exists {
		return nil, false
	}
	member, ok := v.(*model.Member)
	return member, ok && member != nil
}

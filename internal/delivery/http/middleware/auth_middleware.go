package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-recruiter-backend/internal/delivery/http/response"
	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/audit"
	"go-recruiter-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Identity, error)
}

// AuthMiddleware requires a valid Firebase ID token. Handlers only rely on
// the uid it stores under domain.KeyUserID.
func AuthMiddleware(verifier TokenVerifier, isAdmin func(uid string) bool, auditLog *audit.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			auditLog.Log(c.Request.Context(), audit.Event{
				Type:         audit.EventUnauthorizedAccess,
				SubjectType:  "ip",
				SubjectValue: c.ClientIP(),
				RequestID:    c.GetString(string(domain.KeyRequestID)),
				Err:          err,
				Details:      map[string]any{"path": c.FullPath()},
			})
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), identity.UID)
		c.Set(string(domain.KeyUserEmail), identity.Email)
		c.Set(string(domain.KeyIsAdmin), isAdmin != nil && isAdmin(identity.UID))

		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(string(domain.KeyIsAdmin)) {
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

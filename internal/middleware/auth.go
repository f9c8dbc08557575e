package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/apperr"
	"cityconnect/internal/security"
)

const principalKey = "principal"

type TokenVerifier interface {
	Verify(token string) (security.Principal, error)
}

// Auth requires a valid token. It is read from the Authorization header
// ("Bearer <token>" or the bare token) and, for websocket upgrades that
// cannot set headers, from the token query parameter.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := verifier.Verify(tokenFromRequest(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			AbortWithError(c, apperr.MissingToken("authentication required"))
			return
		}
		if !principal.Role.IsAdmin() {
			AbortWithError(c, apperr.Forbidden("admin role required"))
			return
		}
		c.Next()
	}
}

func CurrentPrincipal(c *gin.Context) (security.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return security.Principal{}, false
	}
	principal, ok := value.(security.Principal)
	return principal, ok
}

func tokenFromRequest(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	return c.Query("token")
}

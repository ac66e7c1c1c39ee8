package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auth-service/internal/token"
)

// principalKey is where the guard stores the verified claims in the gin context.
const principalKey = "principal"

// RequireAuth is the per-request authorization guard. The header must have
// the exact shape "Bearer <token>" with a non-empty token; anything else
// (absent header, wrong scheme, empty token) rejects before verification.
// A token that fails verification rejects with no finer detail. Exactly one
// verification attempt is made per request.
func RequireAuth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(principalKey, claims)
		c.Next()
	}
}

// Principal returns the claims the guard attached to the request.
func Principal(c *gin.Context) (*token.Claims, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*token.Claims)
	return claims, ok
}

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

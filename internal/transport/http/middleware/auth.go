package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blog/backend/pkg/auth"
	"github.com/iamasit07/blog/backend/pkg/httputil"
)

const claimsKey = "claims"

// InvalidTokenMessage is the body of every 403 for a bad or expired token.
const InvalidTokenMessage = "Invalid or expired token"

type Authenticator interface {
	Authenticate(accessToken string) (*auth.Claims, error)
}

// Auth validates the bearer access token. Missing token is 401, any
// verification failure is 403 so the client knows to refresh.
func Auth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := httputil.GetBearerToken(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
			return
		}

		claims, err := authenticator.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": InvalidTokenMessage})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// Package auth authenticates api requests by their bearer token.
package auth

import (
	"net/http"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-blog-cms/library/jwt"
)

const (
	// CookieName cookie that may carry the token instead of the Authorization header
	CookieName = "token"

	ctxKeyClaims = "auth.claims"
)

// TokenParser verifies a raw token and returns its claims.
type TokenParser interface {
	Parse(tokenStr string) (*jwt.UserClaims, error)
}

// NewMiddleware stores the claims of a valid token on the gin context.
//
// Requests without a token continue anonymously, a token that fails
// verification is rejected with 401.
func NewMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			gmw.GetLogger(c).Debug("reject token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}

		return ""
	}

	if token, err := c.Cookie(CookieName); err == nil {
		return strings.TrimSpace(token)
	}

	return ""
}

// GetClaims returns the claims of the authenticated caller.
func GetClaims(c *gin.Context) (*jwt.UserClaims, bool) {
	v, ok := c.Get(ctxKeyClaims)
	if !ok {
		return nil, false
	}

	claims, ok := v.(*jwt.UserClaims)
	return claims, ok
}

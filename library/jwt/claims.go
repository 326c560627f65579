package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the identity carried by a bearer token, either minted by
// Signer or issued by the OAuth provider as an id token.
type UserClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Package jwt signs and verifies user bearer tokens.
package jwt

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates HS256 tokens signed with the local secret and, when a
// JWKS endpoint is configured, asymmetric id tokens from the OAuth provider.
type Verifier struct {
	secret []byte
	jwks   keyfunc.Keyfunc
}

// NewVerifier builds a verifier. jwksURL may be empty.
func NewVerifier(ctx context.Context, secret []byte, jwksURL string) (*Verifier, error) {
	if len(secret) == 0 && jwksURL == "" {
		return nil, errors.New("either secret or jwks url is required")
	}

	v := &Verifier{secret: secret}
	if jwksURL != "" {
		jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
		if err != nil {
			return nil, errors.Wrapf(err, "load jwks from %q", jwksURL)
		}
		v.jwks = jwks
	}

	return v, nil
}

func (v *Verifier) keyfunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if len(v.secret) == 0 {
			return nil, errors.New("hmac tokens are not accepted")
		}
		return v.secret, nil
	}

	if v.jwks == nil {
		return nil, errors.Errorf("unexpected signing method %q", token.Method.Alg())
	}

	return v.jwks.Keyfunc(token)
}

// Parse verifies tokenStr and returns its claims.
// Tokens without an email or an expiry are rejected.
func (v *Verifier) Parse(tokenStr string) (*UserClaims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, errors.New("empty token")
	}

	claims := new(UserClaims)
	if _, err := jwt.ParseWithClaims(tokenStr, claims, v.keyfunc,
		jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(gutils.Clock.GetUTCNow),
	); err != nil {
		return nil, errors.Wrap(err, "parse token")
	}

	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	if claims.Email == "" {
		return nil, errors.New("token has no email claim")
	}

	return claims, nil
}

// Sign mints an HS256 token for claims valid for ttl.
func (v *Verifier) Sign(claims *UserClaims, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("no secret configured")
	}

	now := gutils.Clock.GetUTCNow()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return token, nil
}

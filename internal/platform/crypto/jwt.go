package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const visitorIssuer = "paperpharmacy"

// ErrWrongSigningMethod is returned for tokens not signed with HS256.
var ErrWrongSigningMethod = errors.New("unexpected signing method")

// Claims identify an anonymous visitor. Visitors never register; the
// token only scopes history to one browser.
type Claims struct {
	Sub string `json:"sub"` // visitor id
	jwt.RegisteredClaims
}

// NewVisitorID returns a fresh random visitor ID.
func NewVisitorID() string {
	return uuid.NewString()
}

func GenerateToken(secret, visitorID string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		Sub: visitorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    visitorIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrWrongSigningMethod
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(visitorIssuer))
	if err != nil {
		return nil, err
	}
	if claims, ok := t.Claims.(*Claims); ok && t.Valid && claims.Sub != "" {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

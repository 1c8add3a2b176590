package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCookie = errors.New("invalid session cookie")

const cookieIssuer = "blog-session"

// CookieCodec signs session ids into cookie values.
type CookieCodec struct {
	key []byte
}

func NewCookieCodec(key string) *CookieCodec {
	return &CookieCodec{key: []byte(key)}
}

// Encode returns a signed cookie value carrying the session id.
func (c *CookieCodec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    cookieIssuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode verifies a cookie value and returns the session id.
func (c *CookieCodec) Decode(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.ID == "" {
		return "", ErrInvalidCookie
	}
	return claims.ID, nil
}

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/models"
)

// Claims carried by the session token. Role is duplicated into the token so
// route guards do not need a user lookup per request.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken mints a signed HMAC token for the user. The token id (jti) keys
// the redis session entry, so deleting that entry invalidates the token.
func IssueToken(secret string, user *models.User, ttl time.Duration) (token, jti string, err error) {
	jti = uuid.NewString()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return token, jti, err
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.New(apperr.Unauthorized, "unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Wrap(apperr.Unauthorized, "invalid or expired token", err)
	}
	return claims, nil
}

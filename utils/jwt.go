package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogicum/blogicum/config"
)

// SessionTTL bounds how long an issued session token stays valid. Logout
// blacklists a token for the remainder of this window.
const SessionTTL = 72 * time.Hour

// Claims is the identity a session token carries.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewSessionToken signs a session token for the given identity, expiring
// after SessionTTL.
func NewSessionToken(userID uint, username string) (string, error) {
	return signToken(userID, username, SessionTTL)
}

func signToken(userID uint, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sessionSecret())
}

// ParseToken verifies a session token. Anything other than a live HS256
// token under the configured secret, expiry included, is an error.
func ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return sessionSecret(), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	return claims, nil
}

func sessionSecret() []byte {
	return []byte(config.Get().JWTSecret)
}

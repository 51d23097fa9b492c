package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ChaliniM/Healthcare/pkg/types"
)

const tokenIssuer = "clinic-server"

// JWTClaims represents the session token claims
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenValidator issues and validates HS256 session tokens
type TokenValidator struct {
	jwtSecret []byte
	ttl       time.Duration
}

// NewTokenValidator creates a new token validator
func NewTokenValidator(secret string, ttl time.Duration) *TokenValidator {
	return &TokenValidator{
		jwtSecret: []byte(secret),
		ttl:       ttl,
	}
}

// Generate signs a new session token for the principal
func (tv *TokenValidator) Generate(principal *types.Principal) (*types.AuthToken, error) {
	now := time.Now()

	claims := &JWTClaims{
		UserID:   principal.UserID,
		Username: principal.Username,
		Role:     string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tv.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   principal.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tv.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &types.AuthToken{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tv.ttl.Seconds()),
	}, nil
}

// Validate parses and validates a session token and returns its principal
func (tv *TokenValidator) Validate(tokenString string) (*types.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tv.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &types.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     types.UserRole(claims.Role),
	}, nil
}

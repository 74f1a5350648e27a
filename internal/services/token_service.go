package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/turbonotes/backend/internal/config"
)

// Token kinds carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for malformed, expired, mis-signed or
// wrong-kind tokens. No further detail is exposed.
var ErrInvalidToken = errors.New("invalid token")

// TokenPair is a freshly issued access/refresh token pair
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims are the statements a Turbo Notes token asserts about its bearer.
// Tokens are stateless: there is no server-side session and no revocation.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IssueTokenPair signs a new access/refresh pair for the given user
func IssueTokenPair(cfg *config.Config, userID string) (*TokenPair, error) {
	access, err := signToken(cfg, userID, TokenTypeAccess, cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(cfg, userID, TokenTypeRefresh, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccessToken validates a refresh token and issues a new access token.
// The refresh token is not rotated; it stays valid until its fixed expiry.
func RefreshAccessToken(cfg *config.Config, refreshToken string) (string, error) {
	userID, err := ParseToken(cfg, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return signToken(cfg, userID, TokenTypeAccess, cfg.AccessTokenTTL)
}

// ParseToken verifies a token of the wanted kind and returns the subject user id
func ParseToken(cfg *config.Config, tokenStr, wantType string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.TokenType != wantType || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func signToken(cfg *config.Config, userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

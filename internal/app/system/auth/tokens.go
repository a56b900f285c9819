// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature or claim
	// verification, including expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongTokenType is returned when a refresh token is presented where
	// an access token is expected, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

// TokenManager issues and verifies the HS256-signed access and refresh
// tokens used by the API. Refresh tokens carry type=refresh and a jti so a
// leaked access token can never be replayed through the refresh endpoint.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a TokenManager from the signing secret and TTLs.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccessToken returns a signed access token for the given subject.
func (m *TokenManager) IssueAccessToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(m.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// IssueRefreshToken returns a signed refresh token for the given subject.
func (m *TokenManager) IssueRefreshToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"iat":  now.Unix(),
		"exp":  now.Add(m.refreshTTL).Unix(),
		"jti":  uuid.NewString(),
		"type": "refresh",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyAccessToken checks signature and expiry and returns the subject.
// Refresh tokens are rejected here.
func (m *TokenManager) VerifyAccessToken(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	if t, _ := claims["type"].(string); t == "refresh" {
		return "", ErrWrongTokenType
	}
	return m.subject(claims)
}

// VerifyRefreshToken checks signature, expiry, and the refresh type marker,
// and returns the subject.
func (m *TokenManager) VerifyRefreshToken(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	if t, _ := claims["type"].(string); t != "refresh" {
		return "", ErrWrongTokenType
	}
	return m.subject(claims)
}

func (m *TokenManager) parse(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *TokenManager) subject(claims jwt.MapClaims) (string, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

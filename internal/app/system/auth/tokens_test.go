package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := newTestManager()

	token, err := tm.IssueAccessToken("64f0c0ffee0000000000beef")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := tm.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "64f0c0ffee0000000000beef" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := newTestManager()

	token, err := tm.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := tm.VerifyRefreshToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestTokenTypeSeparation(t *testing.T) {
	tm := newTestManager()

	access, _ := tm.IssueAccessToken("user-1")
	refresh, _ := tm.IssueRefreshToken("user-1")

	if _, err := tm.VerifyAccessToken(refresh); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("refresh-as-access: got %v, want ErrWrongTokenType", err)
	}
	if _, err := tm.VerifyRefreshToken(access); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("access-as-refresh: got %v, want ErrWrongTokenType", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, -time.Minute)

	token, err := tm.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tm.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: got %v, want ErrInvalidToken", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	tm := newTestManager()
	other := NewTokenManager("different-secret", 15*time.Minute, 24*time.Hour)

	token, _ := tm.IssueAccessToken("user-1")
	if _, err := other.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: got %v, want ErrInvalidToken", err)
	}

	if _, err := tm.VerifyAccessToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: got %v, want ErrInvalidToken", err)
	}
}

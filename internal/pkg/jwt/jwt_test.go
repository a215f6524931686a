package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateSessionToken(token, "secret")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Issuer != Issuer || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if d := time.Until(claims.ExpiresAt.Time); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("unexpected expiry in %s", d)
	}
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	token, _ := GenerateSessionToken(1, "secret", time.Hour)
	if _, err := ValidateSessionToken(token, "other"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := ValidateSessionToken("garbage", "secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, _ := GenerateSessionToken(1, "secret", -time.Minute)
	if _, err := ValidateSessionToken(token, "secret"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestSessionTokenRequiresSecret(t *testing.T) {
	if _, err := GenerateSessionToken(1, "", time.Hour); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected no secret error, got %v", err)
	}
	if _, err := ValidateSessionToken("x", ""); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected no secret error, got %v", err)
	}
}

package utils

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword("hunter22", hash) {
		t.Error("VerifyPassword should accept the right password")
	}
	if VerifyPassword("hunter23", hash) {
		t.Error("VerifyPassword should reject a wrong password")
	}
	if VerifyPassword("hunter22", "not-a-hash") {
		t.Error("VerifyPassword should reject a malformed hash")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "vidhub", 30*time.Minute)

	token, err := m.Generate(42, "alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "alice" || claims.UserID != 42 {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Issuer != "vidhub" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("secret", "vidhub", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Generate(1, "bob")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	m.now = time.Now
	if _, err := m.Parse(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Parse err = %v, want ErrExpiredToken", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", "vidhub", time.Minute).Generate(1, "bob")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := NewTokenManager("two", "vidhub", time.Minute).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("secret", "vidhub", time.Minute)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := m.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestTokenMissingSubject(t *testing.T) {
	m := NewTokenManager("secret", "vidhub", time.Minute)
	token, err := m.Generate(1, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse err = %v, want ErrInvalidToken", err)
	}
}

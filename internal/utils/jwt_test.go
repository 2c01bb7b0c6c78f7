package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	tok, err := NewAccessToken(secret, 42, "client@jana.fr", "CLIENT", "BUSINESS", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("empty token string")
	}
	if until := time.Until(tok.Exp); until < 14*time.Minute || until > 16*time.Minute {
		t.Fatalf("expiry %v not ~15 minutes out", tok.Exp)
	}

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v valid=%v", err, parsed != nil && parsed.Valid)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["id"].(float64) != 42 {
		t.Fatalf("id claim = %v, want 42", claims["id"])
	}
	if claims["email"] != "client@jana.fr" || claims["role"] != "CLIENT" || claims["typeClient"] != "BUSINESS" {
		t.Fatalf("claims = %v", claims)
	}
}

func TestNewAccessTokenWrongSecretRejected(t *testing.T) {
	tok, err := NewAccessToken("secret-a", 1, "a@b.fr", "CLIENT", "INDIVIDUAL", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	_, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	if err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestNewResetToken(t *testing.T) {
	tok, err := NewResetToken(60)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(tok.Raw) != 64 {
		t.Fatalf("raw token length = %d, want 64 hex chars", len(tok.Raw))
	}
	other, err := NewResetToken(60)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if tok.Raw == other.Raw {
		t.Fatal("two reset tokens were identical")
	}
}

func TestHashTokenRaw(t *testing.T) {
	a := HashTokenRaw("abc")
	b := HashTokenRaw("abc")
	if a != b {
		t.Fatal("hash not deterministic")
	}
	if a == HashTokenRaw("abd") {
		t.Fatal("distinct inputs hashed equal")
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(a))
	}
	if a == "abc" {
		t.Fatal("raw token stored unhashed")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Fatal("wrong password accepted")
	}
}

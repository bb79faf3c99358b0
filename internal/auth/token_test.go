package auth

import (
	"testing"
	"time"
)

func TestGenerateValidate(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %s", userID)
	}
}

func TestGenerateDistinctTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	first, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first == second {
		t.Fatalf("expected tokens issued back to back to differ")
	}
}

func TestValidateExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute)

	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := issuer.Validate(token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("different", time.Hour)

	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.Validate(token); err == nil {
		t.Fatalf("expected validation with wrong secret to fail")
	}
}

func TestHashTokenStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatalf("expected identical hashes for identical tokens")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatalf("expected different hashes for different tokens")
	}
}

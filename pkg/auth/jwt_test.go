package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken(42, "user@example.com", RoleUser, "secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Sub != 42 || claims.Email != "user@example.com" || claims.Role != RoleUser {
		t.Errorf("claims = %+v", claims)
	}
	if claims.IsAdmin() {
		t.Error("USER claims report admin")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewAccessToken(42, "user@example.com", RoleUser, "secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	if _, err := Parse(token, "other-secret"); err == nil {
		t.Error("Parse() accepted a token signed with the wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := NewAccessToken(42, "user@example.com", RoleUser, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	if _, err := Parse(token, "secret"); err == nil {
		t.Error("Parse() accepted an expired token")
	}
}

func TestIsAdmin(t *testing.T) {
	admin := &Claims{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("ADMIN claims do not report admin")
	}
}

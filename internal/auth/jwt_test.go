package auth

import (
	"testing"
	"time"
)

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", "bankcards-test", 15*time.Minute, time.Hour)
}

func TestGenerateAndParsePair(t *testing.T) {
	tm := newTestManager()

	access, refresh, exp, err := tm.GeneratePair("user-1", "ADMIN")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Error("access expiry not in the future")
	}

	claims, err := tm.ParseAccess(access)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "ADMIN" {
		t.Errorf("claims = %+v", claims)
	}

	claims, err = tm.ParseRefresh(refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("refresh uid = %q", claims.UserID)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	tm := newTestManager()
	access, refresh, _, err := tm.GeneratePair("user-1", "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tm.ParseAccess(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := tm.ParseRefresh(access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	access, _, _, err := newTestManager().GeneratePair("user-1", "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := NewTokenManager("different", "different", "bankcards-test", time.Minute, time.Hour)
	if _, err := other.ParseAccess(access); err == nil {
		t.Error("token verified with wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", "bankcards-test", -time.Minute, -time.Minute)
	access, _, _, err := tm.GeneratePair("user-1", "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tm.ParseAccess(access); err == nil {
		t.Error("expired token accepted")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := newTestManager()
	for _, in := range []string{"", "not.a.jwt", "a.b"} {
		if _, err := tm.ParseAccess(in); err == nil {
			t.Errorf("ParseAccess(%q) succeeded", in)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals password")
	}
	if err := VerifyPassword("hunter22", hash); err != nil {
		t.Errorf("verify: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("wrong password verified")
	}
}

package utils

import (
	"testing"
	"time"

	"github.com/walkitapp/walkit/config"
)

func setTestSecret() {
	config.SetForTest(config.AppConfig{JWTSecret: "test-secret"})
}

func TestGenerateAndParseToken(t *testing.T) {
	setTestSecret()

	token, err := GenerateToken("user-1", TokenTypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("expected access type, got %q", claims.TokenType)
	}
}

func TestParseToken_Expired(t *testing.T) {
	setTestSecret()

	token, err := GenerateToken("user-1", TokenTypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	setTestSecret()

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestParseTokenOfType(t *testing.T) {
	setTestSecret()

	refresh, err := GenerateToken("user-1", TokenTypeRefresh, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if _, err := ParseTokenOfType(refresh, TokenTypeRefresh); err != nil {
		t.Fatalf("refresh token rejected as refresh: %v", err)
	}
	if _, err := ParseTokenOfType(refresh, TokenTypeAccess); err == nil {
		t.Fatalf("refresh token accepted as access token")
	}
}

func TestGenerateTokenPair(t *testing.T) {
	setTestSecret()

	pair, err := GenerateTokenPair("user-2")
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	if _, err := ParseTokenOfType(pair.Access, TokenTypeAccess); err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if _, err := ParseTokenOfType(pair.Refresh, TokenTypeRefresh); err != nil {
		t.Fatalf("refresh token invalid: %v", err)
	}
}

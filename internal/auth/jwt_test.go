package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseJWT_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "user-1", "read:sites read:forecast")

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
	scopes := claims.Scopes()
	if !HasScope(scopes, ScopeReadSites) || !HasScope(scopes, ScopeReadForecast) {
		t.Fatalf("expected both scopes, got %v", scopes)
	}
	if HasScope(scopes, ScopeWriteGeneration) {
		t.Fatalf("ungranted scope present: %v", scopes)
	}
}

func TestParseJWT_UnknownScopesDropped(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "user-1", "read:sites admin:everything")

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	scopes := claims.Scopes()
	if len(scopes) != 1 || scopes[0] != ScopeReadSites {
		t.Fatalf("expected only read:sites, got %v", scopes)
	}
}

func TestParseJWT_Rejections(t *testing.T) {
	secret := []byte("test-secret")

	noSubject := Claims{
		Scope: "read:sites",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	noSubjectToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noSubject).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	hs512 := Claims{
		Scope: "read:sites",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512Token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, hs512).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	cases := []struct {
		name   string
		token  string
		secret []byte
	}{
		{"empty token", "", secret},
		{"empty secret", mustToken(t, secret, "user-1", "read:sites"), nil},
		{"garbage", "not.a.jwt", secret},
		{"wrong secret", mustToken(t, []byte("other"), "user-1", "read:sites"), secret},
		{"missing subject", noSubjectToken, secret},
		{"wrong algorithm", hs512Token, secret},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseJWT(tc.token, tc.secret); !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestParseScopes(t *testing.T) {
	scopes := ParseScopes("  read:sites   write:generation read:sites ")
	if len(scopes) != 3 {
		t.Fatalf("expected 3 entries, got %v", scopes)
	}
	if scopes[0] != ScopeReadSites || scopes[1] != ScopeWriteGeneration {
		t.Fatalf("unexpected order: %v", scopes)
	}
	if got := ParseScopes(""); len(got) != 0 {
		t.Fatalf("expected empty for empty claim, got %v", got)
	}
}

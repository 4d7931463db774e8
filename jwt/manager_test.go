package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, secret string) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		AccessTTL:     10 * time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte(secret),
		Issuer:        "gorevoke-test",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestMintParseAccessRoundTrip(t *testing.T) {
	m := newTestManager(t, "test-secret-0123456789")

	token, minted, err := m.MintAccess("user-1", []string{"admin", "member"})
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}
	if minted.ID == "" {
		t.Fatal("minted access token has empty token id")
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" || claims.Roles[1] != "member" {
		t.Fatalf("roles = %v, want [admin member]", claims.Roles)
	}
	if claims.ID != minted.ID {
		t.Fatalf("token id %q does not survive round trip, minted %q", claims.ID, minted.ID)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 10*time.Minute {
		t.Fatalf("token lifetime = %v, want 10m", got)
	}
}

func TestMintRefreshUniqueIDsAndNoRoles(t *testing.T) {
	m := newTestManager(t, "test-secret-0123456789")

	first, firstClaims, err := m.MintRefresh("user-1")
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}
	_, secondClaims, err := m.MintRefresh("user-1")
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}
	if firstClaims.ID == secondClaims.ID {
		t.Fatalf("two refresh tokens share id %q", firstClaims.ID)
	}

	claims, err := m.ParseRefresh(first)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("refresh lifetime = %v, want 1h", got)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t, "test-secret-0123456789")

	access, _, err := m.MintAccess("user-1", []string{"member"})
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}
	refresh, _, err := m.MintRefresh("user-1")
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}

	// Both kinds verify under the same key, so the kind claim is the only
	// thing keeping a short-lived access token from being rotated like a
	// refresh credential, and vice versa.
	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrMalformed) {
		t.Fatalf("ParseRefresh(access token) = %v, want ErrMalformed", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrMalformed) {
		t.Fatalf("ParseAccess(refresh token) = %v, want ErrMalformed", err)
	}
}

func TestParseMalformed(t *testing.T) {
	m := newTestManager(t, "test-secret-0123456789")

	for _, input := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := m.ParseAccess(input); !errors.Is(err, ErrMalformed) {
			t.Fatalf("ParseAccess(%q) = %v, want ErrMalformed", input, err)
		}
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	minter := newTestManager(t, "secret-one-0123456789")
	verifier := newTestManager(t, "secret-two-0123456789")

	token, _, err := minter.MintAccess("user-1", nil)
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}
	if _, err := verifier.ParseAccess(token); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("foreign signature parse = %v, want ErrBadSignature", err)
	}
}

func TestParseExpired(t *testing.T) {
	m, err := NewManager(Config{
		AccessTTL:     time.Millisecond,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("test-secret-0123456789"),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, _, err := m.MintAccess("user-1", nil)
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := m.ParseAccess(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expired parse = %v, want ErrExpired", err)
	}
}

func TestAlgorithmConfusionRejected(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}

	edManager, err := NewManager(Config{
		AccessTTL:     10 * time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("new ed25519 manager: %v", err)
	}

	hsManager := newTestManager(t, "test-secret-0123456789")

	hsToken, _, err := hsManager.MintAccess("user-1", nil)
	if err != nil {
		t.Fatalf("mint hs256 access: %v", err)
	}
	if _, err := edManager.ParseAccess(hsToken); err == nil {
		t.Fatal("ed25519 manager accepted hs256 token")
	}

	edToken, _, err := edManager.MintAccess("user-1", []string{"admin"})
	if err != nil {
		t.Fatalf("mint ed25519 access: %v", err)
	}
	claims, err := edManager.ParseAccess(edToken)
	if err != nil {
		t.Fatalf("parse ed25519 access: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{
			name: "zero access ttl",
			cfg:  Config{RefreshTTL: time.Hour, SigningMethod: MethodHS256, PrivateKey: []byte("k")},
		},
		{
			name: "refresh not beyond access",
			cfg:  Config{AccessTTL: time.Hour, RefreshTTL: time.Hour, SigningMethod: MethodHS256, PrivateKey: []byte("k")},
		},
		{
			name: "hs256 missing key",
			cfg:  Config{AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: MethodHS256},
		},
		{
			name: "ed25519 missing public key",
			cfg:  Config{AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: MethodEd25519},
		},
		{
			name: "unknown method",
			cfg:  Config{AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: "rs256", PrivateKey: []byte("k")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

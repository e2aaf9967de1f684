package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, mutate func(*Config)) *Manager {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	cfg := Config{
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "famguard-test",
		Audience:      "api",
		Leeway:        10 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return mgr
}

func TestAccessRoundTrip(t *testing.T) {
	mgr := newTestManager(t, nil)

	token, err := mgr.CreateAccess("u1", "dev-abc", "jti-1")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	claims, err := mgr.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UserID != "u1" || claims.DeviceID != "dev-abc" || claims.ID != "jti-1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.TokenType != typeAccess {
		t.Fatalf("expected access type, got %q", claims.TokenType)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	mgr := newTestManager(t, nil)

	token, err := mgr.CreateRefresh("u1", "dev-abc", "fam-9", "jti-2")
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}

	claims, err := mgr.ParseRefresh(token)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.FamilyID != "fam-9" || claims.ID != "jti-2" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestTypeConfusionRejected(t *testing.T) {
	mgr := newTestManager(t, nil)

	access, err := mgr.CreateAccess("u1", "dev", "a1")
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := mgr.CreateRefresh("u1", "dev", "f1", "r1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.ParseRefresh(access); !errors.Is(err, ErrWrongType) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := mgr.ParseAccess(refresh); !errors.Is(err, ErrWrongType) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
}

func TestExpiredClassified(t *testing.T) {
	mgr := newTestManager(t, func(cfg *Config) {
		cfg.AccessTTL = time.Nanosecond
		cfg.RefreshTTL = time.Millisecond
		cfg.Leeway = 0
	})

	token, err := mgr.CreateAccess("u1", "dev", "a1")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := mgr.ParseAccess(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestMalformedClassified(t *testing.T) {
	mgr := newTestManager(t, nil)

	inputs := []string{
		"",
		"garbage",
		"a.b.c",
		"eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ0ZXN0In0.",
	}
	for _, input := range inputs {
		if _, err := mgr.ParseAccess(input); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestForeignSignatureRejected(t *testing.T) {
	mgr := newTestManager(t, nil)
	other := newTestManager(t, nil)

	token, err := other.CreateAccess("u1", "dev", "a1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.ParseAccess(token); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for foreign signature, got %v", err)
	}
}

func TestLenientParseToleratesExpiry(t *testing.T) {
	mgr := newTestManager(t, func(cfg *Config) {
		cfg.AccessTTL = time.Millisecond
		cfg.RefreshTTL = time.Millisecond
		cfg.Leeway = 0
	})

	token, err := mgr.CreateRefresh("u1", "dev", "f1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	claims, err := mgr.ParseRefreshLenient(token)
	if err != nil {
		t.Fatalf("lenient parse rejected expired token: %v", err)
	}
	if claims.FamilyID != "f1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	// Forgery is still rejected even leniently.
	other := newTestManager(t, nil)
	forged, err := other.CreateRefresh("u1", "dev", "f1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ParseRefreshLenient(forged); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestHS256RoundTrip(t *testing.T) {
	cfg := Config{
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:        "famguard-test",
	}
	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := mgr.CreateAccess("u1", "dev", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ParseAccess(token); err != nil {
		t.Fatalf("hs256 round trip failed: %v", err)
	}
}

func TestNewManagerRejectsMisconfiguration(t *testing.T) {
	cases := []Config{
		{},
		{AccessTTL: time.Hour, RefreshTTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("k")},
		{AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour, SigningMethod: MethodHS256},
		{AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour, SigningMethod: MethodEd25519},
		{AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour, SigningMethod: "rs512"},
	}
	for i, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("case %d: expected configuration error", i)
		}
	}
}

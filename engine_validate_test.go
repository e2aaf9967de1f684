package famguard

import (
	"errors"
	"testing"
)

func TestValidateAccessAcceptsFreshToken(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	res, err := engine.ValidateAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if res.UserID != "u1" || res.TokenID == "" || res.DeviceID == "" {
		t.Fatalf("incomplete result: %+v", res)
	}
}

func TestValidateAccessRejectsRefreshToken(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := engine.ValidateAccess(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for refresh token, got %v", err)
	}
}

func TestValidateAccessRejectsMalformedToken(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))

	if _, err := engine.ValidateAccess(deviceCtx("d1"), "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateAccessRejectsRevokedJTI(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if err := engine.RevokeAccessToken(ctx, pair.AccessToken); err != nil {
		t.Fatalf("RevokeAccessToken failed: %v", err)
	}

	// Signature and expiry are still fine; only the jti is burned.
	if _, err := engine.ValidateAccess(ctx, pair.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestRevokeAccessTokenIsIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if err := engine.RevokeAccessToken(ctx, pair.AccessToken); err != nil {
		t.Fatal(err)
	}
	if err := engine.RevokeAccessToken(ctx, pair.AccessToken); err != nil {
		t.Fatalf("repeat revoke failed: %v", err)
	}
}

func TestRevokeAccessTokenLeavesFamilyAlive(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.RevokeAccessToken(ctx, pair.AccessToken); err != nil {
		t.Fatal(err)
	}

	// Revoking one access token is not a logout; the refresh chain
	// must keep working.
	if _, err := engine.Rotate(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("rotation after access revoke failed: %v", err)
	}
}

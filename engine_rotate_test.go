package famguard

import (
	"errors"
	"sync"
	"testing"
)

func TestRotateAdvancesChain(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	refresh := pair.RefreshToken
	for want := 2; want <= 5; want++ {
		next, err := engine.Rotate(ctx, refresh)
		if err != nil {
			t.Fatalf("rotation %d failed: %v", want, err)
		}
		if next.FamilyID != pair.FamilyID {
			t.Fatalf("rotation changed family: %s != %s", next.FamilyID, pair.FamilyID)
		}
		if next.RefreshToken == refresh {
			t.Fatal("rotation returned the same refresh token")
		}

		snap, err := engine.FamilySnapshot(ctx, pair.FamilyID)
		if err != nil {
			t.Fatal(err)
		}
		if snap.ChainLength != want {
			t.Fatalf("chain length %d, want %d", snap.ChainLength, want)
		}

		refresh = next.RefreshToken
	}
}

func TestRotateRetryToleratedOnceThenRejected(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Rotate(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("first rotation failed: %v", err)
	}

	// A dropped-response retry with the superseded token still lands.
	if _, err := engine.Rotate(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("retry with superseded token failed: %v", err)
	}

	// The allowance is single-use; a second replay is theft evidence.
	_, err = engine.Rotate(ctx, pair.RefreshToken)
	if !errors.Is(err, ErrRevokedTokenReuse) && !errors.Is(err, ErrFamilyNotFound) {
		t.Fatalf("expected reuse rejection, got %v", err)
	}
}

func TestRotateDeviceMismatchDestroysFamily(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	legit := deviceCtx("d1")
	attacker := deviceCtx("d2")

	pair, err := engine.IssuePair(legit, "u1")
	if err != nil {
		t.Fatal(err)
	}
	rotated, err := engine.Rotate(legit, pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}

	// Stolen token presented from another device.
	if _, err := engine.Rotate(attacker, rotated.RefreshToken); !errors.Is(err, ErrDeviceMismatch) {
		t.Fatalf("expected ErrDeviceMismatch, got %v", err)
	}

	// The whole chain is gone: every token from the family is dead,
	// including the legitimate holder's copy.
	_, err = engine.Rotate(legit, rotated.RefreshToken)
	if !errors.Is(err, ErrRevokedTokenReuse) && !errors.Is(err, ErrFamilyNotFound) {
		t.Fatalf("expected rejection for destroyed family, got %v", err)
	}
	if _, err := engine.FamilySnapshot(legit, pair.FamilyID); !errors.Is(err, ErrFamilyNotFound) {
		t.Fatalf("destroyed family still visible: %v", err)
	}
}

func TestRotateChainLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Family.MaxChainLength = 3
	engine, _, _ := newTestEngine(t, cfg)
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	refresh := pair.RefreshToken
	for i := 0; i < 2; i++ {
		next, err := engine.Rotate(ctx, refresh)
		if err != nil {
			t.Fatalf("rotation %d failed: %v", i+1, err)
		}
		refresh = next.RefreshToken
	}

	// chainLength is now at the limit.
	if _, err := engine.Rotate(ctx, refresh); !errors.Is(err, ErrChainLimitExceeded) {
		t.Fatalf("expected ErrChainLimitExceeded, got %v", err)
	}

	// Exhaustion does not destroy the family; an attacker spamming
	// rotations must not be able to force a logout.
	snap, err := engine.FamilySnapshot(ctx, pair.FamilyID)
	if err != nil {
		t.Fatalf("exhausted family destroyed: %v", err)
	}
	if snap.ChainLength != 3 {
		t.Fatalf("chain length %d, want 3", snap.ChainLength)
	}
}

func TestRotateRejectsMalformedToken(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))

	if _, err := engine.Rotate(deviceCtx("d1"), "not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRotateRejectsAccessToken(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Rotate(ctx, pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}
}

func TestRotateUnknownFamily(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	// Structurally valid refresh token naming a family that was never
	// created.
	token, err := engine.jwtManager.CreateRefresh("u1", engine.deviceID(ctx), "ghost-family", "ghost-jti")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Rotate(ctx, token); !errors.Is(err, ErrFamilyNotFound) {
		t.Fatalf("expected ErrFamilyNotFound, got %v", err)
	}
}

func TestRotateThrottle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.EnableRotationThrottle = true
	cfg.Security.MaxRotationAttempts = 2
	engine, _, _ := newTestEngine(t, cfg)
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	refresh := pair.RefreshToken
	for i := 0; i < 2; i++ {
		next, err := engine.Rotate(ctx, refresh)
		if err != nil {
			t.Fatalf("rotation %d failed: %v", i+1, err)
		}
		refresh = next.RefreshToken
	}

	if _, err := engine.Rotate(ctx, refresh); !errors.Is(err, ErrRotationRateLimited) {
		t.Fatalf("expected ErrRotationRateLimited, got %v", err)
	}
}

func TestRotateStoreFailureDoesNotDestroyFamily(t *testing.T) {
	engine, _, mr := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	mr.SetError("forced store failure")
	if _, err := engine.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	mr.SetError("")

	// A transient outage must not cost the user their session.
	next, err := engine.Rotate(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("rotation after store recovery failed: %v", err)
	}
	if next.FamilyID != pair.FamilyID {
		t.Fatalf("family changed across outage: %s != %s", next.FamilyID, pair.FamilyID)
	}
}

func TestRotateConcurrentBoundedToOneGeneration(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.Rotate(ctx, pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrRevokedTokenReuse) || errors.Is(err, ErrFamilyNotFound) {
			fail++
			continue
		}
		t.Fatalf("unexpected rotation error: %v", err)
	}

	// The duplicate allowance admits at most one extra winner.
	if success < 1 || success > 2 {
		t.Fatalf("expected 1 or 2 successes, got %d", success)
	}
	if success+fail != n {
		t.Fatalf("lost results: %d + %d != %d", success, fail, n)
	}
}

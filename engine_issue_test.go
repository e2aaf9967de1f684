package famguard

import (
	"errors"
	"testing"
)

func TestIssuePairReturnsWorkingTokens(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.FamilyID == "" {
		t.Fatalf("incomplete pair: %+v", pair)
	}

	res, err := engine.ValidateAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("fresh access token rejected: %v", err)
	}
	if res.UserID != "u1" {
		t.Fatalf("wrong user in claims: %q", res.UserID)
	}

	snap, err := engine.FamilySnapshot(ctx, pair.FamilyID)
	if err != nil {
		t.Fatalf("FamilySnapshot failed: %v", err)
	}
	if snap.ChainLength != 1 || snap.UserID != "u1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestIssuePairDistinctFamiliesPerLogin(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))
	ctx := deviceCtx("d1")

	first, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if first.FamilyID == second.FamilyID {
		t.Fatalf("two logins shared family %s", first.FamilyID)
	}

	ids, err := engine.ActiveFamilyIDs(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 indexed families, got %v", ids)
	}
}

func TestIssuePairRejectsEmptyUser(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig(t))

	if _, err := engine.IssuePair(deviceCtx("d1"), ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestIssuePairStoreFailure(t *testing.T) {
	engine, _, mr := newTestEngine(t, testConfig(t))
	mr.Close()

	if _, err := engine.IssuePair(deviceCtx("d1"), "u1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

package famguard

import (
	"context"
	"errors"
	"time"

	"github.com/famguard/famguard/family"
	"github.com/famguard/famguard/fingerprint"
)

// FamilySnapshot returns a read-only view of one rotation chain, or
// [ErrFamilyNotFound] if it no longer exists.
func (e *Engine) FamilySnapshot(ctx context.Context, familyID string) (*FamilySnapshot, error) {
	if e == nil || e.ledger == nil {
		return nil, ErrEngineNotReady
	}

	fam, err := e.ledger.Get(ctx, familyID)
	if err != nil {
		if errors.Is(err, family.ErrNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, storeErr(err)
	}

	return &FamilySnapshot{
		FamilyID:      fam.FamilyID,
		UserID:        fam.UserID,
		DevicePrefix:  fingerprint.LogPrefix(fam.DeviceID),
		ChainLength:   fam.ChainLength,
		CreatedAt:     time.Unix(fam.CreatedAt, 0).UTC(),
		LastRotatedAt: time.Unix(fam.LastRotatedAt, 0).UTC(),
	}, nil
}

// ActiveFamilyIDs lists the family identifiers indexed for a user. The
// index can briefly lag record expiry, so entries are not guaranteed
// to resolve via [Engine.FamilySnapshot].
func (e *Engine) ActiveFamilyIDs(ctx context.Context, userID string) ([]string, error) {
	if e == nil || e.ledger == nil {
		return nil, ErrEngineNotReady
	}

	ids, err := e.ledger.ActiveFamilyIDs(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return ids, nil
}

package famguard

import (
	"context"
	"fmt"
	"log"

	"github.com/famguard/famguard/internal"
)

// IssuePair opens a new token family for the user and returns its
// first access/refresh pair. The device identifier is derived from
// the client signals on ctx and embedded in both tokens; every later
// rotation of the refresh token must come from the same device.
func (e *Engine) IssuePair(ctx context.Context, userID string) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrTokenInvalid)
	}

	deviceID := e.deviceID(ctx)
	familyID := internal.NewFamilyID()
	refreshJTI := internal.NewTokenID()
	accessJTI := internal.NewTokenID()

	if _, err := e.ledger.Create(ctx, familyID, refreshJTI, userID, deviceID); err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, userID, familyID, deviceID, ErrStoreUnavailable, nil)
		return nil, storeErr(err)
	}

	access, err := e.jwtManager.CreateAccess(userID, deviceID, accessJTI)
	if err == nil {
		var refresh string
		refresh, err = e.jwtManager.CreateRefresh(userID, deviceID, familyID, refreshJTI)
		if err == nil {
			e.metricInc(MetricIssueSuccess)
			e.emitAudit(ctx, auditEventIssueSuccess, true, userID, familyID, deviceID, nil, nil)
			return &TokenPair{
				AccessToken:  access,
				RefreshToken: refresh,
				FamilyID:     familyID,
			}, nil
		}
	}

	// Signing failed after the ledger write. The orphaned family holds
	// a jti no token carries, so it is harmless, but clean it up
	// best-effort anyway.
	if destroyErr := e.ledger.Destroy(ctx, familyID); destroyErr != nil {
		log.Print("famguard: orphaned family cleanup failed")
	}
	e.metricInc(MetricIssueFailure)
	e.emitAudit(ctx, auditEventIssueFailure, false, userID, familyID, deviceID, err, func() map[string]string {
		return map[string]string{
			"reason": "signing_failed",
		}
	})
	return nil, err
}

// storeErr maps ledger and registry infrastructure failures onto the
// public [ErrStoreUnavailable] sentinel, preserving the original text.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

package famguard

import (
	"context"
)

// Logout destroys the family a refresh token belongs to, revoking its
// live members. The token may already be expired; an expired refresh
// token still names its family, and logout on it must still work.
// Malformed tokens are rejected without any state change.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.jwtManager == nil {
		return ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseRefreshLenient(refreshToken)
	if err != nil {
		return ErrTokenInvalid
	}

	if err := e.ledger.Destroy(ctx, claims.FamilyID); err != nil {
		return storeErr(err)
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricFamilyDestroyed)
	e.emitAudit(ctx, auditEventLogout, true, claims.UserID, claims.FamilyID, claims.DeviceID, nil, nil)
	return nil
}

// LogoutAll destroys every family indexed for the user, logging the
// user out of all devices at once.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	if e == nil || e.ledger == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrTokenInvalid
	}

	if err := e.ledger.DestroyAllForUser(ctx, userID); err != nil {
		return storeErr(err)
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, "", "", nil, nil)
	return nil
}

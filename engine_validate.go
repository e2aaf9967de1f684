package famguard

import (
	"context"
	"errors"
	"time"

	"github.com/famguard/famguard/jwt"
)

// ValidateAccess verifies an access token's signature, expiry, type,
// and revocation status. There is no family lookup on this path; the
// single registry probe keeps validation cheap enough for every
// request.
func (e *Engine) ValidateAccess(ctx context.Context, tokenStr string) (*AuthResult, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		e.metricObserve(MetricValidateLatency, time.Since(start))
	}()

	claims, err := e.jwtManager.ParseAccess(tokenStr)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		if errors.Is(err, jwt.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	revoked, err := e.registry.IsRevoked(ctx, claims.ID)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		return nil, storeErr(err)
	}
	if revoked {
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventValidateRejected, false, claims.UserID, "", claims.DeviceID, ErrTokenRevoked, nil)
		return nil, ErrTokenRevoked
	}

	e.metricInc(MetricValidateSuccess)
	return &AuthResult{
		UserID:   claims.UserID,
		DeviceID: claims.DeviceID,
		TokenID:  claims.ID,
	}, nil
}

// RevokeAccessToken burns a single access token's jti so it fails
// validation for the rest of its lifetime, without touching the
// refresh family it was issued alongside. Useful for mid-session
// privilege drops.
func (e *Engine) RevokeAccessToken(ctx context.Context, tokenStr string) error {
	if e == nil || e.jwtManager == nil {
		return ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseAccess(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			// Nothing to do; expiry already rejects it everywhere.
			return nil
		}
		return ErrTokenInvalid
	}

	if err := e.registry.Revoke(ctx, claims.ID, e.jwtManager.AccessTTL()); err != nil {
		return storeErr(err)
	}

	e.metricInc(MetricAccessRevoked)
	e.emitAudit(ctx, auditEventAccessRevoked, true, claims.UserID, "", claims.DeviceID, nil, nil)
	return nil
}

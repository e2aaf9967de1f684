package famguard

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/famguard/famguard/family"
	"github.com/famguard/famguard/internal"
	"github.com/famguard/famguard/internal/rate"
	"github.com/famguard/famguard/jwt"
)

// Rotate exchanges a refresh token for a fresh access/refresh pair in
// the same family. The checks run in a fixed order so each failure
// mode has exactly one verdict:
//
//  1. Signature and claims. Malformed or expired tokens are rejected
//     with nothing touched; an expired token is not evidence of theft.
//  2. Device binding. A fingerprint that no longer matches the token's
//     embedded device identifier is treated as theft: the whole family
//     is destroyed before the call fails.
//  3. Revocation. A jti already burned by a prior rotation is replay;
//     the family is left alone because it is already consistent.
//  4. Chain advance. The ledger atomically verifies membership, swaps
//     in the new jti, and reports which members fell out of the
//     window; those are burned last.
func (e *Engine) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		if errors.Is(err, jwt.ErrExpired) {
			e.emitAudit(ctx, auditEventRotateInvalid, false, "", "", "", ErrTokenExpired, nil)
			return nil, ErrTokenExpired
		}
		e.emitAudit(ctx, auditEventRotateInvalid, false, "", "", "", ErrTokenInvalid, func() map[string]string {
			return map[string]string{
				"reason": "decode_failed",
			}
		})
		return nil, ErrTokenInvalid
	}

	userID := claims.UserID
	familyID := claims.FamilyID
	oldJTI := claims.ID

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckRotation(ctx, familyID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricRotateRateLimited)
				e.emitAudit(ctx, auditEventRotateRateLimited, false, userID, familyID, claims.DeviceID, ErrRotationRateLimited, nil)
				return nil, ErrRotationRateLimited
			}
			e.metricInc(MetricRotateFailure)
			return nil, storeErr(err)
		}
	}

	observed := e.deviceID(ctx)
	if observed != claims.DeviceID {
		// Theft signal. A stolen refresh token presented from another
		// device invalidates the entire chain, not just this token.
		if err := e.ledger.Destroy(ctx, familyID); err != nil {
			e.metricInc(MetricRotateFailure)
			return nil, storeErr(err)
		}
		e.metricInc(MetricDeviceMismatch)
		e.metricInc(MetricFamilyDestroyed)
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventDeviceMismatch, false, userID, familyID, observed, ErrDeviceMismatch, func() map[string]string {
			return map[string]string{
				"bound_device_prefix": deviceLogPrefix(claims.DeviceID),
			}
		})
		return nil, ErrDeviceMismatch
	}

	revoked, err := e.registry.IsRevoked(ctx, oldJTI)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		return nil, storeErr(err)
	}
	if revoked {
		e.metricInc(MetricReuseDetected)
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventReuseDetected, false, userID, familyID, observed, ErrRevokedTokenReuse, nil)
		return nil, ErrRevokedTokenReuse
	}

	newJTI := internal.NewTokenID()
	fam, evicted, err := e.ledger.Advance(ctx, familyID, oldJTI, newJTI)
	if err != nil {
		switch {
		case errors.Is(err, family.ErrNotFound), errors.Is(err, family.ErrNotMember):
			e.metricInc(MetricRotateFailure)
			e.emitAudit(ctx, auditEventRotateInvalid, false, userID, familyID, observed, ErrFamilyNotFound, func() map[string]string {
				return map[string]string{
					"reason": "not_a_member",
				}
			})
			return nil, ErrFamilyNotFound
		case errors.Is(err, family.ErrChainLimit):
			e.metricInc(MetricChainLimitHit)
			e.metricInc(MetricRotateFailure)
			e.emitAudit(ctx, auditEventChainLimit, false, userID, familyID, observed, ErrChainLimitExceeded, nil)
			return nil, ErrChainLimitExceeded
		default:
			e.metricInc(MetricRotateFailure)
			return nil, storeErr(err)
		}
	}

	access, err := e.jwtManager.CreateAccess(userID, observed, internal.NewTokenID())
	if err == nil {
		var refresh string
		refresh, err = e.jwtManager.CreateRefresh(userID, observed, familyID, newJTI)
		if err == nil {
			// Burn everything that fell out of the membership window so
			// the revocation check catches any later replay.
			for _, jti := range evicted {
				if revokeErr := e.registry.Revoke(ctx, jti, e.ledger.TTL()); revokeErr != nil {
					log.Print("famguard: evicted jti revocation failed")
				}
			}

			e.metricInc(MetricRotateSuccess)
			e.emitAudit(ctx, auditEventRotateSuccess, true, userID, familyID, observed, nil, func() map[string]string {
				return map[string]string{
					"chain_length": strconv.Itoa(fam.ChainLength),
				}
			})
			return &TokenPair{
				AccessToken:  access,
				RefreshToken: refresh,
				FamilyID:     familyID,
			}, nil
		}
	}

	// Signing failed after the chain advanced. The presented jti is now
	// the previous member, so one client retry still lands.
	e.metricInc(MetricRotateFailure)
	e.emitAudit(ctx, auditEventRotateInvalid, false, userID, familyID, observed, err, func() map[string]string {
		return map[string]string{
			"reason": "signing_failed",
		}
	})
	return nil, err
}

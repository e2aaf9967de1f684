package famguard

import (
	"context"
	"errors"
	"time"

	"github.com/famguard/famguard/fingerprint"
)

const (
	auditEventIssueSuccess      = "issue_success"
	auditEventIssueFailure      = "issue_failure"
	auditEventRotateSuccess     = "rotate_success"
	auditEventRotateInvalid     = "rotate_invalid"
	auditEventRotateRateLimited = "rotate_rate_limited"
	auditEventReuseDetected     = "reuse_detected"
	auditEventDeviceMismatch    = "device_mismatch"
	auditEventChainLimit        = "chain_limit_exceeded"
	auditEventValidateRejected  = "validate_rejected"
	auditEventAccessRevoked     = "access_revoked"
	auditEventLogout            = "logout"
	auditEventLogoutAll         = "logout_all"
)

// AuditErrorCode is the stable machine-readable failure code attached
// to audit events.
type AuditErrorCode string

const (
	auditErrTokenInvalid     AuditErrorCode = "token_invalid"
	auditErrTokenExpired     AuditErrorCode = "token_expired"
	auditErrDeviceMismatch   AuditErrorCode = "device_mismatch"
	auditErrRevokedReuse     AuditErrorCode = "revoked_reuse"
	auditErrChainLimit       AuditErrorCode = "chain_limit"
	auditErrFamilyNotFound   AuditErrorCode = "family_not_found"
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrTokenRevoked     AuditErrorCode = "token_revoked"
	auditErrStoreUnavailable AuditErrorCode = "store_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrDeviceMismatch):
		return auditErrDeviceMismatch
	case errors.Is(err, ErrRevokedTokenReuse):
		return auditErrRevokedReuse
	case errors.Is(err, ErrChainLimitExceeded):
		return auditErrChainLimit
	case errors.Is(err, ErrFamilyNotFound):
		return auditErrFamilyNotFound
	case errors.Is(err, ErrRotationRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrTokenRevoked):
		return auditErrTokenRevoked
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrStoreUnavailable
	default:
		return auditErrInternal
	}
}

func deviceLogPrefix(deviceID string) string {
	return fingerprint.LogPrefix(deviceID)
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	familyID string,
	deviceID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    eventType,
		UserID:       userID,
		FamilyID:     familyID,
		DevicePrefix: fingerprint.LogPrefix(deviceID),
		Success:      success,
		Metadata:     metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

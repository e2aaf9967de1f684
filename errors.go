package famguard

import "errors"

// Every rejection surfaces as exactly one of these sentinels; callers
// are expected to force re-login on any of them. Backing-store
// failures are the one exception: they wrap [ErrStoreUnavailable] and
// indicate infrastructure trouble, not a protocol verdict.
var (
	// ErrTokenInvalid is returned for malformed, forged, or wrong-type
	// tokens. No state changes.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for tokens past their expiry. No
	// state changes; expiry is not evidence of compromise.
	ErrTokenExpired = errors.New("token expired")
	// ErrDeviceMismatch is returned when a refresh token is presented
	// from a device other than the one it was issued to. The family is
	// destroyed before this is returned.
	ErrDeviceMismatch = errors.New("device fingerprint mismatch")
	// ErrRevokedTokenReuse is returned when a refresh token's jti is in
	// the revocation registry. The family is left alone; it is already
	// consistent.
	ErrRevokedTokenReuse = errors.New("revoked refresh token reuse")
	// ErrChainLimitExceeded is returned once a family has rotated its
	// maximum number of times. The family remains until its TTL or an
	// explicit logout.
	ErrChainLimitExceeded = errors.New("rotation chain limit exceeded")
	// ErrFamilyNotFound is returned when the token's family no longer
	// exists or no longer recognizes the token.
	ErrFamilyNotFound = errors.New("token family not found")
	// ErrRotationRateLimited is returned when the per-family rotation
	// throttle rejects the attempt.
	ErrRotationRateLimited = errors.New("rotation rate limited")
	// ErrTokenRevoked is returned by ValidateAccess for an access token
	// whose jti has been explicitly revoked.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrStoreUnavailable wraps backing-store connectivity failures.
	// Nothing is destroyed on this path.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrEngineNotReady is returned when a method is called on a nil or
	// unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

package famguard

import "time"

// SecurityReport summarizes the engine's active protections for
// operational review. All values come from the built configuration.
type SecurityReport struct {
	SigningAlgorithm       string
	AccessTTL              time.Duration
	RefreshTTL             time.Duration
	MaxChainLength         int
	DeviceBindingEnabled   bool
	ReuseDetectionEnabled  bool
	RotationThrottleActive bool
	FingerprintSalted      bool
	AuditEnabled           bool
}

// SecurityReport returns the current protection summary.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm: e.config.JWT.SigningMethod,
		AccessTTL:        e.config.JWT.AccessTTL,
		RefreshTTL:       e.config.JWT.RefreshTTL,
		MaxChainLength:   e.config.Family.MaxChainLength,
		// Device binding and reuse detection are structural; they are
		// reported for symmetry with the optional protections.
		DeviceBindingEnabled:   true,
		ReuseDetectionEnabled:  true,
		RotationThrottleActive: e.config.Security.EnableRotationThrottle,
		FingerprintSalted:      e.config.Fingerprint.Salt != "",
		AuditEnabled:           e.config.Audit.Enabled,
	}
}

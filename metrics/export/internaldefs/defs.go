package internaldefs

import (
	famguard "github.com/famguard/famguard"
)

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   famguard.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its exported name.
type HistogramDef struct {
	ID   famguard.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a fixed order.
var CounterDefs = []CounterDef{
	{ID: famguard.MetricIssueSuccess, Name: "famguard_issue_success_total", Help: "Successful token pair issues."},
	{ID: famguard.MetricIssueFailure, Name: "famguard_issue_failure_total", Help: "Failed token pair issues."},
	{ID: famguard.MetricRotateSuccess, Name: "famguard_rotate_success_total", Help: "Successful refresh rotations."},
	{ID: famguard.MetricRotateFailure, Name: "famguard_rotate_failure_total", Help: "Rejected refresh rotations."},
	{ID: famguard.MetricRotateRateLimited, Name: "famguard_rotate_rate_limited_total", Help: "Rotations rejected by the per-family throttle."},
	{ID: famguard.MetricReuseDetected, Name: "famguard_reuse_detected_total", Help: "Detected revoked-token replays."},
	{ID: famguard.MetricDeviceMismatch, Name: "famguard_device_mismatch_total", Help: "Theft signals from device fingerprint mismatches."},
	{ID: famguard.MetricChainLimitHit, Name: "famguard_chain_limit_hit_total", Help: "Rotations rejected by chain exhaustion."},
	{ID: famguard.MetricFamilyDestroyed, Name: "famguard_family_destroyed_total", Help: "Destroyed token families."},
	{ID: famguard.MetricValidateSuccess, Name: "famguard_validate_success_total", Help: "Accepted access tokens."},
	{ID: famguard.MetricValidateFailure, Name: "famguard_validate_failure_total", Help: "Rejected access tokens."},
	{ID: famguard.MetricAccessRevoked, Name: "famguard_access_revoked_total", Help: "Individually revoked access tokens."},
	{ID: famguard.MetricLogout, Name: "famguard_logout_total", Help: "Single-family logout operations."},
	{ID: famguard.MetricLogoutAll, Name: "famguard_logout_all_total", Help: "All-device logout operations."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: famguard.MetricValidateLatency, Name: "famguard_validate_latency_seconds", Help: "ValidateAccess latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// engine's fixed buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix provides name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both export formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

package famguard

import (
	"context"
	"time"

	"github.com/famguard/famguard/family"
	"github.com/famguard/famguard/fingerprint"
	internalaudit "github.com/famguard/famguard/internal/audit"
	"github.com/famguard/famguard/internal/rate"
	"github.com/famguard/famguard/jwt"
	"github.com/famguard/famguard/revocation"
)

// Engine is the single entry point for issuing, rotating, validating,
// and revoking token pairs. Immutable after Build and safe for
// concurrent use.
type Engine struct {
	config      Config
	jwtManager  *jwt.Manager
	ledger      *family.Ledger
	registry    *revocation.Registry
	rateLimiter *rate.Limiter
	hasher      fingerprint.Hasher
	audit       *internalaudit.Dispatcher
	metrics     *Metrics
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Ping checks backing-store connectivity and reports the round trip
// time.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if e == nil || e.ledger == nil {
		return 0, ErrEngineNotReady
	}
	return e.ledger.Ping(ctx)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// deviceID hashes the client signals carried on ctx. Absent signals
// hash like any other value, so a caller that attaches nothing still
// gets a deterministic identifier.
func (e *Engine) deviceID(ctx context.Context) string {
	return e.hasher.DeviceID(signalsFromContext(ctx))
}

package famguard

import (
	"io"
	"time"

	internalaudit "github.com/famguard/famguard/internal/audit"
)

// TokenPair is returned by [Engine.IssuePair] and [Engine.Rotate]. The
// refresh token belongs to the named family; rotating it keeps the
// same FamilyID for the whole chain.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	FamilyID     string
}

// AuthResult is returned by [Engine.ValidateAccess]. DeviceID is the
// hashed device identifier embedded at issue time, never raw client
// signals.
type AuthResult struct {
	UserID   string
	DeviceID string
	TokenID  string
}

// FamilySnapshot is a read-only view of one rotation chain, exposed
// for introspection and operational tooling. Token identifiers are
// deliberately absent; DevicePrefix is the loggable prefix of the
// bound device ID.
type FamilySnapshot struct {
	FamilyID      string
	UserID        string
	DevicePrefix  string
	ChainLength   int
	CreatedAt     time.Time
	LastRotatedAt time.Time
}

// AuditEvent is the record handed to audit sinks.
type AuditEvent = internalaudit.Event

// AuditSink receives emitted audit events. Implementations must be
// safe for concurrent use; the dispatcher calls Emit from a single
// goroutine but sinks may be shared.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events on a channel for consumption by the
// host application.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded event per line to a writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] around w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

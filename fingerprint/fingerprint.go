// Package fingerprint derives stable device identifiers from client
// identity signals.
//
// The identifier is a one-way hash: logs and stored records never
// contain the raw signals, and only a short prefix should ever be
// logged. Identical signals always produce the identical ID; changing
// any single field produces a different one.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
)

// logPrefixLen bounds how much of a device ID may appear in logs and
// audit metadata.
const logPrefixLen = 8

// Signals are the raw client identity inputs observed per request.
// Empty fields are legal and hash like any other value.
type Signals struct {
	UserAgent      string
	IP             string
	AcceptLanguage string
	AcceptEncoding string
}

// Hasher canonicalizes [Signals] into a fixed-length device identifier.
// The zero value is ready to use; Salt distinguishes deployments so the
// same browser does not map to the same ID across installations.
type Hasher struct {
	Salt string
}

// DeviceID returns the deterministic identifier for the given signals.
// The field order is fixed, so two calls with equal signals always
// agree regardless of how the Signals value was populated.
func (h Hasher) DeviceID(sig Signals) string {
	d := sha256.New()
	d.Write([]byte(h.Salt))
	for _, part := range [...]string{sig.UserAgent, sig.IP, sig.AcceptLanguage, sig.AcceptEncoding} {
		// Length-prefix framing keeps ("ab","c") distinct from ("a","bc").
		var n [4]byte
		l := len(part)
		n[0] = byte(l >> 24)
		n[1] = byte(l >> 16)
		n[2] = byte(l >> 8)
		n[3] = byte(l)
		d.Write(n[:])
		d.Write([]byte(part))
	}
	return base64.RawURLEncoding.EncodeToString(d.Sum(nil))
}

// LogPrefix returns the loggable prefix of a device ID.
func LogPrefix(deviceID string) string {
	if len(deviceID) <= logPrefixLen {
		return deviceID
	}
	return deviceID[:logPrefixLen]
}

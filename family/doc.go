// Package family persists refresh-token rotation chains.
//
// One Family record exists per login session. The ledger guarantees at
// most one current jti per family at any time; the previous jti is kept
// solely to tolerate a single in-flight duplicate rotation. Advancing
// the chain is a Lua compare-and-swap, so two near-simultaneous
// rotations cannot fork a family, and every record carries a TTL equal
// to the refresh-token maximum lifetime, refreshed on writes only.
package family

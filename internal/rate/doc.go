// Package rate provides the Redis-backed fixed-window counter behind
// the optional rotation throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on the first hit in
// the window. Key prefix:
//   - fr: — rotation attempts per family
//
// # What this package must NOT do
//
//   - Implement protocol decisions (those live in internal/flows).
//   - Be imported outside the famguard module.
package rate

// Package middleware exposes HTTP adapters for famguard.Engine.
//
// [Guard] reads the Authorization header, copies the client identity
// signals from the request onto the context, validates the access
// token, and injects the result for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It makes
// no authorization decisions of its own and never touches tokens or
// the backing store directly.
package middleware

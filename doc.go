// Package famguard implements refresh-token rotation with family-based
// revocation. Every login opens a token family: a named chain of
// refresh tokens where each successful rotation supersedes the one
// before it. Replaying a superseded token, or presenting any token
// from a device other than the one it was minted for, is treated as
// evidence of theft and collapses the whole chain at once.
//
// The [Engine] is the single entry point. Construct it with [New]:
//
//	engine, err := famguard.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		Build()
//
// Client identity signals travel on the context ([WithUserAgent],
// [WithClientIP], [WithAcceptLanguage], [WithAcceptEncoding]); the
// engine hashes them into the device identifier that refresh tokens
// are bound to.
package famguard

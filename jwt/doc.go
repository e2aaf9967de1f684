// Package jwt mints and verifies the signed access and refresh tokens
// used by the rotation protocol. Access and refresh claims are distinct
// Go types so type confusion between the two token kinds is caught by
// the compiler, not by a runtime string comparison; verification
// failures collapse into the closed set ErrMalformed / ErrExpired /
// ErrWrongType.
package jwt

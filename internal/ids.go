// Package internal holds identifier generation shared by the engine and
// its flows. Nothing here is part of the public API.
package internal

import "github.com/google/uuid"

// NewFamilyID names a new rotation chain. Opaque and unique; two logins
// by the same user never share a family.
func NewFamilyID() string {
	return uuid.NewString()
}

// NewTokenID mints a fresh jti, the atomic unit of revocation.
func NewTokenID() string {
	return uuid.NewString()
}

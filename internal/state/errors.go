package state

import "errors"

var (
	// ErrInvalidClaim indicates the state token is forged, malformed or signed with another key
	ErrInvalidClaim = errors.New("invalid state claim")

	// ErrExpiredClaim indicates the state token is past its expiry
	ErrExpiredClaim = errors.New("state claim expired")

	// ErrStateGeneration indicates the state token could not be signed
	ErrStateGeneration = errors.New("failed to generate state")
)

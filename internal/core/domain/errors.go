package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClosed indicates the coordinator or adapter has been shut down.
	ErrClosed = errors.New("closed")

	// Collaborator Errors.

	// ErrTransport indicates a collaborator call failed on the wire.
	// Local and directory pipelines surface it as a Failed slot.
	ErrTransport = errors.New("transport failure")

	// ErrUnauthorized indicates the homeserver rejected the access token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the remote rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Identity Errors.

	// ErrIdentityUnavailable indicates no identity server is configured.
	ErrIdentityUnavailable = errors.New("identity server unavailable")

	// ErrConsentRequired indicates the user has not agreed to share
	// third-party identifiers with the identity server.
	ErrConsentRequired = errors.New("identity server consent required")
)

// Package matrix provides an HTTP client for the Matrix client-server API.
//
// The Client implements driven.DirectoryClient (user directory search) and
// driven.ProfileFetcher (profile by user id). Requests carry the access
// token as a bearer token and pass through a client-side rate limiter that
// also honours the server's M_LIMIT_EXCEEDED back-off.
//
// Error responses are decoded into *APIError, which unwraps to the domain
// sentinels (domain.ErrNotFound, domain.ErrUnauthorized, domain.ErrRateLimited,
// domain.ErrTransport) so callers can use errors.Is.
//
// The same request machinery is used by the identity adapter to talk to
// identity servers, which share the error format.
package matrix

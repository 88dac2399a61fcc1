// Package identity implements driven.IdentityService.
//
// Service talks to a Matrix identity server using the v2 API: it registers
// with an OpenID token from the homeserver, fetches the hash details and
// looks up hashed email addresses. Consent and the server URL live in the
// ConfigStore, so edits to the config file reach listeners through Reload.
//
// Memory is an in-process implementation for tests and offline use.
package identity

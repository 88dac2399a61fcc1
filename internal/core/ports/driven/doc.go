// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the coordinator to function:
//
//   - KnownUserStore: Live local query over users the account already knows
//   - DirectoryClient: Remote user directory search
//   - ProfileFetcher: Profile lookup by user id
//   - KnownUserRepository: Maintenance of the known users
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the coordinator degrades gracefully:
//
//   - IdentityService: Email to user id lookup. Without it, the email slot stays idle.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

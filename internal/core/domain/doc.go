// Package domain defines the core business entities for user search.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - UserProfile: A user as returned by any search source
//   - ThreePidUser: The outcome of an email (third-party id) lookup
//   - Slot: The result state owned by one search pipeline
//   - SelectionSet: The ordered set of users picked by the host
//   - ViewState: The aggregate read exposed to the hosting flow
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

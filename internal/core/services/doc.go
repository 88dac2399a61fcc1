// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The user search coordinator owns three pipelines, each with its own
// timing policy and result slot:
//
//   - KnownUsersPipeline: debounced live query against the local store
//   - DirectoryPipeline: debounced directory search with exact-id augmentation
//   - IdentityPipeline: email-gated, sampled identity server lookup
//
// Every term is stamped with a monotonic version by the TermStore. A
// pipeline only applies a result whose version is still the latest term it
// accepted; anything else is dropped unseen.
//
// Services are pure Go with no CGO.
package services

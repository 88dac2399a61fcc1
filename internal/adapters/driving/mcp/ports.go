package mcp

import (
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search is the coordinator the tools drive. The server does not
	// close it.
	Search driving.UserSearch

	// KnownUsers manages the local known-users table.
	KnownUsers driving.KnownUserService

	// Settings exposes the application settings.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// KnownUsers and Settings are optional
	return nil
}

// Package tui provides an interactive terminal picker for users.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Search is the coordinator the picker drives.
	Search driving.UserSearch

	// KnownUsers saves highlighted users to the local store. Optional.
	KnownUsers driving.KnownUserService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

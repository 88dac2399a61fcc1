package tui

import "errors"

// ErrMissingSearchService is returned when the user search is not provided.
var ErrMissingSearchService = errors.New("tui: user search is required")

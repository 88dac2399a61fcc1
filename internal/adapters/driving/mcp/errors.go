// Package mcp provides an MCP (Model Context Protocol) server adapter for
// usersearch. It lets an assistant search for users and build a selection.
package mcp

import "errors"

// ErrMissingSearchService is returned when the user search is not provided.
var ErrMissingSearchService = errors.New("mcp: user search is required")

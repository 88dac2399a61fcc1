package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for usersearch resources.
	uriScheme = "usersearch://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "state",
		Name:        "state",
		Description: "Current search term, results and selection",
		MIMEType:    "application/json",
	}, s.handleStateResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "selection",
		Name:        "selection",
		Description: "Users currently selected",
		MIMEType:    "application/json",
	}, s.handleSelectionResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "known-users",
		Name:        "known-users",
		Description: "Users the account already knows",
		MIMEType:    "application/json",
	}, s.handleKnownUsersResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "known-users/{userId}",
		Name:        "known-user",
		Description: "Profile of a known user",
		MIMEType:    "application/json",
	}, s.handleKnownUserResource)

	if s.ports.Settings != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "settings",
			Name:        "settings",
			Description: "Homeserver, identity server and search timing settings",
			MIMEType:    "application/json",
		}, s.handleSettingsResource)
	}
}

// handleStateResource returns the aggregate view.
func (s *Server) handleStateResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, toStateOutput(s.ports.Search.State()))
}

// handleSelectionResource returns the selected users.
func (s *Server) handleSelectionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	selected := toUserOutputs(s.ports.Search.State().SelectedProfiles)
	return jsonResource(req.Params.URI, UserOutputs{Users: selected, Count: len(selected)})
}

// handleKnownUsersResource returns every known user.
func (s *Server) handleKnownUsersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.KnownUsers == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	users, err := s.ports.KnownUsers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing known users: %w", err)
	}
	return jsonResource(req.Params.URI, toUserOutputs(users))
}

// handleKnownUserResource returns one known user.
func (s *Server) handleKnownUserResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.KnownUsers == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract userId from URI: usersearch://known-users/{userId}
	userID := extractUserID(req.Params.URI)
	if userID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	users, err := s.ports.KnownUsers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing known users: %w", err)
	}
	for _, u := range users {
		if u.ID == userID {
			return jsonResource(req.Params.URI, toUserOutput(u))
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// handleSettingsResource returns the application settings.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	type settingsInfo struct {
		Homeserver      string `json:"homeserver"`
		IdentityServer  string `json:"identity_server"`
		IdentityConsent bool   `json:"identity_consent"`
		Debounce        string `json:"debounce"`
		SampleInterval  string `json:"sample_interval"`
		DirectoryLimit  int    `json:"directory_limit"`
		SingleSelection bool   `json:"single_selection"`
	}

	return jsonResource(req.Params.URI, settingsInfo{
		Homeserver:      settings.Directory.BaseURL,
		IdentityServer:  settings.Identity.ServerURL,
		IdentityConsent: settings.Identity.Consent,
		Debounce:        settings.Search.Debounce.String(),
		SampleInterval:  settings.Search.SampleInterval.String(),
		DirectoryLimit:  settings.Search.DirectoryLimit,
		SingleSelection: settings.Search.SingleSelection,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractUserID extracts the user ID from a URI like usersearch://known-users/{userId}.
// The id may be percent-encoded.
func extractUserID(uri string) string {
	const prefix = uriScheme + "known-users/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return id
}

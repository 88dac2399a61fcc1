package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/services"
)

const (
	defaultWait = 5 * time.Second
	maxWait     = 30 * time.Second
)

// EmptyInput is the input schema of tools without arguments.
type EmptyInput struct{}

// SearchInput is the input schema for the set_search_term tool.
type SearchInput struct {
	Term   string `json:"term" jsonschema:"name, user id or email address to search for"`
	WaitMS int    `json:"wait_ms,omitempty" jsonschema:"how long to wait for results in milliseconds (default 5000)"`
}

// UserInput identifies a user.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"fully qualified user id such as @alice:example.com"`
}

// ExclusionsInput is the input schema for the set_exclusions tool.
type ExclusionsInput struct {
	UserIDs []string `json:"user_ids" jsonschema:"user ids to leave out of every result"`
}

// ConsentInput is the input schema for the set_identity_consent tool.
type ConsentInput struct {
	Granted bool `json:"granted" jsonschema:"whether email addresses may be sent to the identity server"`
}

// AddUserInput is the input schema for the add_known_user tool.
type AddUserInput struct {
	UserID      string `json:"user_id" jsonschema:"fully qualified user id"`
	DisplayName string `json:"display_name,omitempty" jsonschema:"display name; fetched from the homeserver when empty"`
}

// StateOutput is the aggregate search state returned by every tool.
type StateOutput struct {
	Term            string       `json:"term"`
	Pending         bool         `json:"pending"`
	Known           SlotOutput   `json:"known"`
	Directory       SlotOutput   `json:"directory"`
	Email           *EmailOutput `json:"email,omitempty"`
	Selected        []UserOutput `json:"selected"`
	IdentityConsent bool         `json:"identity_consent"`
}

// SlotOutput is one result list and its state.
type SlotOutput struct {
	State string       `json:"state"`
	Users []UserOutput `json:"users,omitempty"`
	Error string       `json:"error,omitempty"`
}

// EmailOutput is the identity lookup for an email term.
type EmailOutput struct {
	State string      `json:"state"`
	Email string      `json:"email,omitempty"`
	User  *UserOutput `json:"user,omitempty"`
}

// UserOutput is a user profile.
type UserOutput struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// UserOutputs wraps a list of users.
type UserOutputs struct {
	Users []UserOutput `json:"users"`
	Count int          `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_search_term",
		Description: "Search known users, the user directory and, for email addresses, the identity server",
	}, s.handleSetSearchTerm)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_search",
		Description: "Clear the search term and every result list; the selection is kept",
	}, s.handleClearSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_state",
		Description: "Return the current search term, results and selection",
	}, s.handleSearchState)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "toggle_selection",
		Description: "Select a user, or deselect it if already selected",
	}, s.handleToggleSelection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_selection",
		Description: "Deselect a user",
	}, s.handleRemoveSelection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_selection",
		Description: "Deselect every user",
	}, s.handleClearSelection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_exclusions",
		Description: "Replace the list of users left out of every result",
	}, s.handleSetExclusions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_identity_consent",
		Description: "Allow or forbid sending email addresses to the identity server",
	}, s.handleSetIdentityConsent)

	if s.ports.KnownUsers != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_known_user",
			Description: "Add a user to the local known-users list",
		}, s.handleAddKnownUser)
	}
}

// handleSetSearchTerm stores the term and waits for the pipelines to settle.
func (s *Server) handleSetSearchTerm(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, StateOutput, error) {
	wait := defaultWait
	if input.WaitMS > 0 {
		wait = min(time.Duration(input.WaitMS)*time.Millisecond, maxWait)
	}

	s.ports.Search.SetSearchTerm(input.Term)

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	view, err := services.AwaitSettled(ctx, s.ports.Search, input.Term)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, StateOutput{}, err
	}
	return nil, toStateOutput(view), nil
}

func (s *Server) handleClearSearch(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StateOutput, error) {
	s.ports.Search.ClearSearch()
	return nil, toStateOutput(s.ports.Search.State()), nil
}

func (s *Server) handleSearchState(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StateOutput, error) {
	return nil, toStateOutput(s.ports.Search.State()), nil
}

func (s *Server) handleToggleSelection(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input UserInput,
) (*mcp.CallToolResult, StateOutput, error) {
	if input.UserID == "" {
		return nil, StateOutput{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	s.ports.Search.ToggleSelection(input.UserID)
	return nil, toStateOutput(s.ports.Search.State()), nil
}

func (s *Server) handleRemoveSelection(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input UserInput,
) (*mcp.CallToolResult, StateOutput, error) {
	s.ports.Search.RemoveSelection(input.UserID)
	return nil, toStateOutput(s.ports.Search.State()), nil
}

func (s *Server) handleClearSelection(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StateOutput, error) {
	s.ports.Search.ClearSelection()
	return nil, toStateOutput(s.ports.Search.State()), nil
}

func (s *Server) handleSetExclusions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExclusionsInput,
) (*mcp.CallToolResult, StateOutput, error) {
	s.ports.Search.SetExclusions(input.UserIDs)
	return nil, toStateOutput(s.ports.Search.State()), nil
}

func (s *Server) handleSetIdentityConsent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConsentInput,
) (*mcp.CallToolResult, StateOutput, error) {
	if err := s.ports.Search.SetIdentityConsent(ctx, input.Granted); err != nil {
		return nil, StateOutput{}, err
	}
	return nil, toStateOutput(s.ports.Search.State()), nil
}

func (s *Server) handleAddKnownUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	profile, err := s.ports.KnownUsers.Add(ctx, input.UserID, input.DisplayName)
	if err != nil {
		return nil, UserOutput{}, err
	}
	return nil, toUserOutput(profile), nil
}

func toUserOutput(u domain.UserProfile) UserOutput {
	return UserOutput{UserID: u.ID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
}

func toUserOutputs(users []domain.UserProfile) []UserOutput {
	out := make([]UserOutput, len(users))
	for i, u := range users {
		out[i] = toUserOutput(u)
	}
	return out
}

func toSlotOutput(slot domain.Slot[[]domain.UserProfile]) SlotOutput {
	out := SlotOutput{State: slot.State.String()}
	if slot.IsReady() {
		out.Users = toUserOutputs(slot.Value)
	}
	if slot.IsFailed() && slot.Err != nil {
		out.Error = slot.Err.Error()
	}
	return out
}

func toStateOutput(view domain.ViewState) StateOutput {
	out := StateOutput{
		Term:            view.Term,
		Pending:         view.Pending,
		Known:           toSlotOutput(view.Known),
		Directory:       toSlotOutput(view.Directory),
		Selected:        toUserOutputs(view.SelectedProfiles),
		IdentityConsent: view.IdentityConsent,
	}

	if !view.Email.IsIdle() {
		email := &EmailOutput{State: view.Email.State.String()}
		if view.Email.IsReady() && view.Email.Value != nil {
			email.Email = view.Email.Value.Email
			if view.Email.Value.User != nil {
				user := toUserOutput(*view.Email.Value.User)
				email.User = &user
			}
		}
		out.Email = email
	}
	return out
}

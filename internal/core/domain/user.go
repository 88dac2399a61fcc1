package domain

import "strings"

// UserProfile is a user as returned by the local store, the directory
// or the profile endpoint.
type UserProfile struct {
	// ID is the fully qualified user id, e.g. "@bob:example.com".
	ID string `json:"id"`

	// DisplayName is optional.
	DisplayName string `json:"display_name,omitempty"`

	// AvatarURL is optional.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Name returns the display name, falling back to the user id.
func (u UserProfile) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// ThreePidUser is the outcome of an identity lookup for an email address.
// User is nil when no account is linked to the email. When the account
// exists but its profile could not be fetched, User only carries the ID.
type ThreePidUser struct {
	Email string       `json:"email"`
	User  *UserProfile `json:"user,omitempty"`
}

// Linked reports whether an account was found for the email.
func (t ThreePidUser) Linked() bool {
	return t.User != nil
}

// IsUserID reports whether s looks like a fully qualified user id:
// a leading '@', a non-empty localpart, a ':' and a non-empty server name.
func IsUserID(s string) bool {
	if len(s) < 4 || s[0] != '@' {
		return false
	}
	localpart, server, ok := strings.Cut(s[1:], ":")
	if !ok || localpart == "" || server == "" {
		return false
	}
	if strings.ContainsAny(localpart, " \t\n") || strings.ContainsAny(server, " \t\n/") {
		return false
	}
	return true
}

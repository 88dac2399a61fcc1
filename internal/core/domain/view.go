package domain

// ViewState is the aggregate read exposed to the hosting flow: the current
// term, the three pipeline slots and the selection.
type ViewState struct {
	// Term is the most recently stored search term.
	Term string

	// Pending is true while any pipeline has yet to produce a result for
	// Term, either waiting out its timing policy or loading.
	Pending bool

	// Known holds users from the local store.
	Known Slot[[]UserProfile]

	// Directory holds users from the remote directory.
	Directory Slot[[]UserProfile]

	// Email holds the identity lookup outcome for an email term.
	Email Slot[*ThreePidUser]

	// Selections are the selected user ids in insertion order.
	Selections []string

	// SelectedProfiles carries the best known profile for each selected id,
	// in the same order as Selections. A profile only has its ID set when
	// the user was selected without being seen in any result.
	SelectedProfiles []UserProfile

	// IdentityConsent mirrors the identity server consent flag.
	IdentityConsent bool
}

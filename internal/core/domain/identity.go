package domain

// IdentityEventKind identifies an identity collaborator notification.
type IdentityEventKind string

// Identity notifications.
const (
	// IdentityServerChanged fires when the configured identity server changes.
	IdentityServerChanged IdentityEventKind = "server_changed"

	// IdentityConsentChanged fires when the user's consent changes.
	IdentityConsentChanged IdentityEventKind = "consent_changed"
)

// IdentityEvent is delivered to identity listeners.
type IdentityEvent struct {
	Kind IdentityEventKind

	// ServerURL is the identity server in effect after the event.
	ServerURL string

	// Consent is the consent state in effect after the event.
	Consent bool
}

// Package identity normalizes external identity sources. Verifiers return
// identity facts only; account creation, linking, and approval decisions live
// in the account service.
package identity

import "context"

// Provider identifies an external identity provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderLinkedIn Provider = "linkedin"
)

// Assertion is a verified (subject, email, name) tuple from a provider.
// Email may be empty: LinkedIn tolerates members without a retrievable
// address, and callers must handle that.
type Assertion struct {
	Provider  Provider
	SubjectID string
	Email     string
	FirstName string
	LastName  string
}

// TokenVerifier validates an opaque provider credential (Google ID token,
// LinkedIn access token) and returns the asserted identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Assertion, error)
}

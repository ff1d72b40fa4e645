package google

import (
	"context"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"alumnet/internal/identity"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/email"
)

const issuerURL = "https://accounts.google.com"

// Verifier validates Google ID tokens against the configured OAuth client ID.
// Signature, issuer, audience, and expiry checks are delegated to go-oidc;
// every failure surfaces as the same generic invalid-token error so callers
// leak nothing about the cause.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
	timeout  time.Duration
}

func New(ctx context.Context, clientID string, timeout time.Duration) (*Verifier, error) {
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "google client id is required")
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to init google oidc provider")
	}

	return &Verifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		timeout:  timeout,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*identity.Assertion, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, dErrors.NewWithReason(dErrors.CodeUnauthorized, "invalid_identity_token", "invalid google id token")
	}

	var claims struct {
		Subject    string `json:"sub"`
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, dErrors.NewWithReason(dErrors.CodeUnauthorized, "invalid_identity_token", "invalid google id token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, dErrors.NewWithReason(dErrors.CodeUnauthorized, "invalid_identity_token", "invalid google id token")
	}

	first, last := claims.GivenName, claims.FamilyName
	if first == "" {
		if claims.Name != "" {
			first, last = splitName(claims.Name)
		} else {
			first, last = email.DeriveNameFromEmail(claims.Email)
		}
	}

	return &identity.Assertion{
		Provider:  identity.ProviderGoogle,
		SubjectID: claims.Subject,
		Email:     claims.Email,
		FirstName: first,
		LastName:  last,
	}, nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

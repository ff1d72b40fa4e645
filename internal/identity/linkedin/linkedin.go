package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"alumnet/internal/identity"
	dErrors "alumnet/pkg/domain-errors"
)

const defaultBaseURL = "https://api.linkedin.com"

// Verifier resolves a LinkedIn access token into an identity assertion by
// calling the profile and email endpoints. The two calls are independent and
// run concurrently under one bounded deadline. Provider failures are
// fallible, non-retryable facts: they surface immediately, never loop.
type Verifier struct {
	client  *http.Client
	baseURL string
}

func New(timeout time.Duration, baseURL string) *Verifier {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Verifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type profileResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"localizedFirstName"`
	LastName  string `json:"localizedLastName"`
}

type emailResponse struct {
	Elements []struct {
		Handle struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"handle~"`
	} `json:"elements"`
}

func (v *Verifier) Verify(ctx context.Context, accessToken string) (*identity.Assertion, error) {
	var (
		profile profileResponse
		emails  emailResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return v.get(gctx, accessToken, "/v2/me", &profile)
	})
	g.Go(func() error {
		// Best effort: a member without a retrievable address is still a
		// valid login, so email endpoint failures never abort the flow.
		_ = v.get(gctx, accessToken, "/v2/emailAddress?q=members&projection=(elements*(handle~))", &emails)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if profile.ID == "" {
		return nil, dErrors.NewWithReason(dErrors.CodeUnavailable, "identity_provider_error", "linkedin profile response missing member id")
	}

	address := ""
	if len(emails.Elements) > 0 {
		address = emails.Elements[0].Handle.EmailAddress
	}

	return &identity.Assertion{
		Provider:  identity.ProviderLinkedIn,
		SubjectID: profile.ID,
		Email:     address,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}, nil
}

func (v *Verifier) get(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+path, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build linkedin request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return dErrors.NewWithReason(dErrors.CodeUnavailable, "identity_provider_error", "linkedin request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dErrors.NewWithReason(dErrors.CodeUnavailable, "identity_provider_error",
			fmt.Sprintf("linkedin returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.NewWithReason(dErrors.CodeUnavailable, "identity_provider_error", "linkedin returned malformed response")
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"alumnet/internal/account/models"
	userstore "alumnet/internal/account/store/user"
	"alumnet/internal/audit"
	"alumnet/internal/identity"
	jwttoken "alumnet/internal/jwt_token"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/email"
	"alumnet/pkg/platform/sentinel"
	"alumnet/pkg/requestcontext"
)

// SocialResult is the outcome of a federated login.
type SocialResult struct {
	User    *models.User
	Pair    *jwttoken.Pair
	Created bool
}

// SocialLogin verifies a provider credential and resolves it to an account:
// first by provider subject id, then by linking the asserted email to an
// existing account, and finally by creating a new account through the same
// provisioning rules as password registration. The approval gate applies
// either way, so a freshly created student account comes back pending, not
// logged in.
func (s *Service) SocialLogin(ctx context.Context, provider identity.Provider, req models.SocialRequest) (*SocialResult, error) {
	verifier, ok := s.verifiers[provider]
	if !ok || verifier == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("%s login is not configured", provider))
	}

	req.Normalize()
	credential := req.IDToken
	if provider == identity.ProviderLinkedIn {
		credential = req.AccessToken
	}
	if credential == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "provider credential is required")
	}

	assertion, err := verifier.Verify(ctx, credential)
	if err != nil {
		s.metrics.IncrementSocialLogin(string(provider), "failure")
		return nil, err
	}
	// Providers report addresses with arbitrary casing. Stored emails are
	// lowercase, so normalize before the subject and email lookups.
	assertion.Email = strings.ToLower(strings.TrimSpace(assertion.Email))

	u, created, err := s.resolveSocialAccount(ctx, assertion, req)
	if err != nil {
		s.metrics.IncrementSocialLogin(string(provider), "failure")
		return nil, err
	}

	if err := u.CanAuthenticate(); err != nil {
		s.metrics.IncrementSocialLogin(string(provider), "pending")
		if created {
			// The account exists now even though login is gated; the caller
			// reports the pending state alongside the error.
			return &SocialResult{User: u, Created: true}, err
		}
		return nil, err
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementSocialLogin(string(provider), "success")
	s.emit(ctx, audit.Event{UserID: u.ID.String(), Action: audit.ActionLoginSucceeded, Detail: string(provider)})
	return &SocialResult{User: u, Pair: pair, Created: created}, nil
}

// resolveSocialAccount maps a verified assertion to a user record. The
// returned bool reports whether a new account was created.
func (s *Service) resolveSocialAccount(ctx context.Context, assertion *identity.Assertion, req models.SocialRequest) (*models.User, bool, error) {
	u, err := s.users.FindByProviderSubject(ctx, assertion.Provider, assertion.SubjectID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if assertion.Email != "" {
		linked, err := s.users.LinkProviderSubject(ctx, assertion.Email, assertion.Provider, assertion.SubjectID, requestcontext.Now(ctx))
		if err == nil {
			if subjectOf(linked, assertion.Provider) == assertion.SubjectID {
				s.emit(ctx, audit.Event{UserID: linked.ID.String(), Action: audit.ActionProviderLinked, Detail: string(assertion.Provider)})
			}
			return linked, false, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to link account")
		}
	}

	u, err = s.createSocialAccount(ctx, assertion, req)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// createSocialAccount provisions a first-time social account. The request
// must carry the registration facts a password signup would: role, college
// code, and a roll number for students and alumni. The admin domain check
// runs before any write.
func (s *Service) createSocialAccount(ctx context.Context, assertion *identity.Assertion, req models.SocialRequest) (*models.User, error) {
	if req.Role == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "role is required for first social login")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	c, err := s.colleges.ResolveByCode(ctx, req.CollegeCode)
	if err != nil {
		return nil, err
	}

	prov, err := models.Decide(models.ProvisionInput{
		Role:           role,
		Email:          assertion.Email,
		RollNumber:     req.RollNumber,
		College:        c,
		TrustedDomains: s.trustedDomains,
	})
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	u := &models.User{
		ID:         uuid.New(),
		Username:   socialUsername(assertion),
		Email:      assertion.Email,
		FirstName:  assertion.FirstName,
		LastName:   assertion.LastName,
		Role:       role,
		CollegeID:  &c.ID,
		RollNumber: req.RollNumber,
		Verified:   prov.Verified,
		Approved:   prov.Approved,
		Active:     prov.Active,
		Staff:      prov.Staff,
		Superuser:  prov.Superuser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch assertion.Provider {
	case identity.ProviderGoogle:
		u.GoogleSubjectID = assertion.SubjectID
	case identity.ProviderLinkedIn:
		u.LinkedInSubjectID = assertion.SubjectID
	}

	err = s.users.Create(ctx, u)
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		u.Username = u.Username + "_" + u.ID.String()[:8]
		err = s.users.Create(ctx, u)
	}
	if err != nil {
		// A concurrent login for the same assertion may have won the insert.
		if errors.Is(err, sentinel.ErrConflict) {
			if existing, ferr := s.users.FindByProviderSubject(ctx, assertion.Provider, assertion.SubjectID); ferr == nil {
				return existing, nil
			}
		}
		return nil, translateCreate(err)
	}

	s.metrics.IncrementUsersCreated(string(role))
	s.emit(ctx, audit.Event{UserID: u.ID.String(), Action: audit.ActionAccountRegistered, Detail: string(assertion.Provider)})
	s.logger.InfoContext(ctx, "social account created",
		"user_id", u.ID, "provider", assertion.Provider, "role", role, "approved", u.Approved)
	return u, nil
}

// socialUsername derives a username from the asserted email, falling back to
// a provider-prefixed subject id when the provider returned no address.
func socialUsername(assertion *identity.Assertion) string {
	if assertion.Email != "" {
		return email.LocalPart(assertion.Email)
	}
	prefix := "g_"
	if assertion.Provider == identity.ProviderLinkedIn {
		prefix = "li_"
	}
	return prefix + assertion.SubjectID
}

func subjectOf(u *models.User, provider identity.Provider) string {
	if provider == identity.ProviderLinkedIn {
		return u.LinkedInSubjectID
	}
	return u.GoogleSubjectID
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnet/internal/account/models"
	userstore "alumnet/internal/account/store/user"
	"alumnet/internal/identity"
	dErrors "alumnet/pkg/domain-errors"
)

func googleAssertion(email string) *identity.Assertion {
	return &identity.Assertion{
		Provider:  identity.ProviderGoogle,
		SubjectID: "google-sub-1",
		Email:     email,
		FirstName: "Ravi",
		LastName:  "Sharma",
	}
}

func socialStudentRequest() models.SocialRequest {
	return models.SocialRequest{
		IDToken:     "opaque-id-token",
		Role:        "student",
		CollegeCode: "092",
		RollNumber:  "2110013",
	}
}

func Test_SocialLogin_CreatesPendingStudent(t *testing.T) {
	f := newFixture(t)
	f.verifier.assertion = googleAssertion("ravi@glbitm.ac.in")

	res, err := f.svc.SocialLogin(context.Background(), identity.ProviderGoogle, socialStudentRequest())
	require.Error(t, err, "new students stay behind the approval gate")
	assert.Equal(t, "pending_approval", dErrors.ReasonOf(err))
	require.NotNil(t, res)
	assert.True(t, res.Created)
	assert.Nil(t, res.Pair)

	u := res.User
	assert.Equal(t, "ravi", u.Username)
	assert.Equal(t, "google-sub-1", u.GoogleSubjectID)
	assert.True(t, u.Verified)
	assert.False(t, u.HasUsablePassword(), "social-only accounts get no password login")
}

func Test_SocialLogin_ExistingSubjectLogsIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifier.assertion = googleAssertion("ravi@glbitm.ac.in")

	res, _ := f.svc.SocialLogin(ctx, identity.ProviderGoogle, socialStudentRequest())
	require.NotNil(t, res)
	approve(t, f, res.User)

	// Second login needs no registration facts: the subject id resolves.
	res, err := f.svc.SocialLogin(ctx, identity.ProviderGoogle, models.SocialRequest{IDToken: "opaque-id-token"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	require.NotNil(t, res.Pair)
	assert.NotEmpty(t, res.Pair.AccessToken)
}

func Test_SocialLogin_LinksExistingEmailAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)
	approve(t, f, u)

	f.verifier.assertion = googleAssertion("ravi@glbitm.ac.in")
	res, err := f.svc.SocialLogin(ctx, identity.ProviderGoogle, models.SocialRequest{IDToken: "opaque-id-token"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Equal(t, "google-sub-1", res.User.GoogleSubjectID)

	// The password survives linking.
	_, _, err = f.svc.Authenticate(ctx, models.LoginRequest{Email: u.Email, Password: "s3cret-pass"})
	require.NoError(t, err)
}

func Test_SocialLogin_MixedCaseEmailLinksNotDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)
	approve(t, f, u)

	// Providers may report the address with arbitrary casing; it must still
	// resolve to the existing account instead of creating a second one.
	f.verifier.assertion = googleAssertion("Ravi@GLBITM.ac.in")
	res, err := f.svc.SocialLogin(ctx, identity.ProviderGoogle, models.SocialRequest{IDToken: "opaque-id-token"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, u.ID, res.User.ID)

	users, err := f.users.List(ctx, userstore.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func Test_SocialLogin_StoresLowercaseEmail(t *testing.T) {
	f := newFixture(t)
	f.verifier.assertion = googleAssertion("Ravi@GLBITM.ac.in")

	res, err := f.svc.SocialLogin(context.Background(), identity.ProviderGoogle, socialStudentRequest())
	require.Error(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Created)
	assert.Equal(t, "ravi@glbitm.ac.in", res.User.Email)
	assert.True(t, res.User.Verified, "domain trust is case-insensitive")
}

func Test_SocialLogin_LinkedInWithoutEmail(t *testing.T) {
	f := newFixture(t)
	f.verifier.assertion = &identity.Assertion{
		Provider:  identity.ProviderLinkedIn,
		SubjectID: "AbC123xyz",
		FirstName: "Priya",
	}

	req := models.SocialRequest{
		AccessToken: "opaque-access-token",
		Role:        "alumni",
		CollegeCode: "092",
		RollNumber:  "2015CS10342",
	}
	res, err := f.svc.SocialLogin(context.Background(), identity.ProviderLinkedIn, req)
	require.Error(t, err)
	assert.Equal(t, "pending_approval", dErrors.ReasonOf(err))
	require.NotNil(t, res)
	assert.Equal(t, "li_AbC123xyz", res.User.Username)
	assert.False(t, res.User.Verified, "no email means no campus trust")
}

func Test_SocialLogin_AdminOffDomainRejectedBeforeWrite(t *testing.T) {
	f := newFixture(t)
	f.verifier.assertion = googleAssertion("dean@gmail.com")

	req := socialStudentRequest()
	req.Role = "admin"
	req.RollNumber = ""

	res, err := f.svc.SocialLogin(context.Background(), identity.ProviderGoogle, req)
	require.Error(t, err)
	assert.Equal(t, "unauthorized_admin_domain", dErrors.ReasonOf(err))
	assert.Nil(t, res)

	users, err := f.users.List(context.Background(), userstore.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func Test_SocialLogin_FirstLoginNeedsRole(t *testing.T) {
	f := newFixture(t)
	f.verifier.assertion = googleAssertion("ravi@glbitm.ac.in")

	_, err := f.svc.SocialLogin(context.Background(), identity.ProviderGoogle, models.SocialRequest{IDToken: "tok"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_SocialLogin_VerifierFailure(t *testing.T) {
	f := newFixture(t)
	f.verifier.err = dErrors.NewWithReason(dErrors.CodeUnauthorized, "invalid_identity_token", "invalid google id token")

	_, err := f.svc.SocialLogin(context.Background(), identity.ProviderGoogle, socialStudentRequest())
	require.Error(t, err)
	assert.Equal(t, "invalid_identity_token", dErrors.ReasonOf(err))
}

func Test_SocialLogin_MissingCredential(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SocialLogin(context.Background(), identity.ProviderGoogle, models.SocialRequest{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_SocialLogin_UnconfiguredProvider(t *testing.T) {
	f := newFixture(t)
	svc := New(f.users, nil, f.tokens, f.revoked)

	_, err := svc.SocialLogin(context.Background(), identity.ProviderGoogle, socialStudentRequest())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

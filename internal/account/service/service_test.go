package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnet/internal/account/models"
	userstore "alumnet/internal/account/store/user"
	"alumnet/internal/audit"
	collegemodels "alumnet/internal/college/models"
	collegeservice "alumnet/internal/college/service"
	collegestore "alumnet/internal/college/store"
	"alumnet/internal/identity"
	jwttoken "alumnet/internal/jwt_token"
	"alumnet/internal/platform/config"
	"alumnet/internal/token/revocation"
	dErrors "alumnet/pkg/domain-errors"
)

var trustedDomains = []string{"glbitm.ac.in", "iitd.ac.in", "iiit.ac.in"}

type fixture struct {
	svc      *Service
	users    *userstore.InMemory
	revoked  *revocation.Memory
	tokens   *jwttoken.Service
	audits   *audit.InMemoryStore
	college  *collegemodels.College
	verifier *fakeVerifier
}

type fixtureOption func(*[]Option)

func withRotation() fixtureOption {
	return func(opts *[]Option) { *opts = append(*opts, WithRefreshRotation(true)) }
}

func newFixture(t *testing.T, fopts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()

	colleges := collegeservice.New(collegestore.NewInMemory())
	college, err := colleges.CreateCollege(ctx, "GL Bajaj Institute", "092", "glbitm.ac.in")
	require.NoError(t, err)

	users := userstore.NewInMemory()
	tokens := jwttoken.NewService(config.JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "alumnet-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	revoked := revocation.NewMemory()
	audits := audit.NewInMemoryStore()
	verifier := &fakeVerifier{}

	opts := []Option{
		WithTrustedDomains(trustedDomains),
		WithAuditPublisher(audit.NewPublisher(audits)),
		WithVerifier(identity.ProviderGoogle, verifier),
		WithVerifier(identity.ProviderLinkedIn, verifier),
	}
	for _, f := range fopts {
		f(&opts)
	}

	return &fixture{
		svc:      New(users, colleges, tokens, revoked, opts...),
		users:    users,
		revoked:  revoked,
		tokens:   tokens,
		audits:   audits,
		college:  college,
		verifier: verifier,
	}
}

type fakeVerifier struct {
	assertion *identity.Assertion
	err       error
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (*identity.Assertion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assertion, nil
}

func studentRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username:    "ravi",
		Email:       "ravi@glbitm.ac.in",
		Password:    "s3cret-pass",
		Role:        "student",
		CollegeCode: "092",
		RollNumber:  "2110013",
	}
}

func Test_Register_StudentPendingApproval(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Register(context.Background(), studentRequest())
	require.NoError(t, err)

	assert.True(t, u.Verified, "campus email is trusted")
	assert.False(t, u.Approved)
	assert.False(t, u.Active)
	assert.False(t, u.Staff)
	assert.True(t, u.HasUsablePassword())
	require.NotNil(t, u.CollegeID)
	assert.Equal(t, f.college.ID, *u.CollegeID)

	events, err := f.audits.ListByUser(context.Background(), u.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionAccountRegistered, events[0].Action)
}

func Test_Register_OutsideEmailUnverified(t *testing.T) {
	f := newFixture(t)

	req := studentRequest()
	req.Email = "ravi@gmail.com"
	u, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, u.Verified)
	assert.False(t, u.Approved)
}

func Test_Register_AdminOnCollegeDomain(t *testing.T) {
	f := newFixture(t)

	req := studentRequest()
	req.Role = "admin"
	req.Email = "dean@glbitm.ac.in"
	req.Username = "dean"
	req.RollNumber = ""

	u, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, u.Approved)
	assert.True(t, u.Active)
	assert.True(t, u.Staff)
	assert.True(t, u.Superuser)
	require.NoError(t, u.CanAuthenticate())
}

func Test_Register_AdminOffDomainWritesNothing(t *testing.T) {
	f := newFixture(t)

	req := studentRequest()
	req.Role = "admin"
	req.Email = "dean@gmail.com"
	req.RollNumber = ""

	_, err := f.svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "unauthorized_admin_domain", dErrors.ReasonOf(err))

	users, err := f.users.List(context.Background(), userstore.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, users, "rejected admin signup must not leave a record")
}

func Test_Register_UnknownCollegeCode(t *testing.T) {
	f := newFixture(t)

	req := studentRequest()
	req.CollegeCode = "999"
	_, err := f.svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "invalid_tenant", dErrors.ReasonOf(err))
}

func Test_Register_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)

	req := studentRequest()
	req.Username = "ravi2"
	_, err = f.svc.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, "duplicate_email", dErrors.ReasonOf(err))
}

func Test_Register_NormalizesEmailCase(t *testing.T) {
	f := newFixture(t)

	req := studentRequest()
	req.Email = "  Ravi@GLBITM.AC.IN "
	u, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ravi@glbitm.ac.in", u.Email)
	assert.True(t, u.Verified)
}

func approve(t *testing.T, f *fixture, u *models.User) {
	t.Helper()
	_, err := f.svc.Approve(context.Background(), u.ID)
	require.NoError(t, err)
}

func Test_Authenticate_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)
	approve(t, f, u)

	got, pair, err := f.svc.Authenticate(ctx, models.LoginRequest{
		Email: "ravi@glbitm.ac.in", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := f.tokens.ValidateToken(pair.AccessToken, jwttoken.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "092", claims.CollegeCode)
}

func Test_Authenticate_UniformFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)
	approve(t, f, u)

	_, _, wrongPassword := f.svc.Authenticate(ctx, models.LoginRequest{
		Email: "ravi@glbitm.ac.in", Password: "wrong",
	})
	_, _, unknownEmail := f.svc.Authenticate(ctx, models.LoginRequest{
		Email: "nobody@glbitm.ac.in", Password: "s3cret-pass",
	})

	require.Error(t, wrongPassword)
	require.ErrorIs(t, wrongPassword, models.ErrInvalidCredentials())
	require.ErrorIs(t, unknownEmail, models.ErrInvalidCredentials())
}

func Test_Authenticate_PendingApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)

	_, _, err = f.svc.Authenticate(ctx, models.LoginRequest{
		Email: "ravi@glbitm.ac.in", Password: "s3cret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, "pending_approval", dErrors.ReasonOf(err))
}

func Test_Authenticate_DeactivatedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)
	approve(t, f, u)
	_, err = f.svc.Deactivate(ctx, u.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Authenticate(ctx, models.LoginRequest{
		Email: "ravi@glbitm.ac.in", Password: "s3cret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, "pending_approval", dErrors.ReasonOf(err))
}

func Test_Approve_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)

	first, err := f.svc.Approve(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, first.Approved)

	second, err := f.svc.Approve(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, second.Approved)

	events, err := f.audits.ListByUser(ctx, u.ID.String())
	require.NoError(t, err)
	approvals := 0
	for _, e := range events {
		if e.Action == audit.ActionAccountApproved {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals, "repeat approval emits no second event")
}

func Test_ListUsers_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)

	req := studentRequest()
	req.Username = "priya"
	req.Email = "priya@glbitm.ac.in"
	_, err = f.svc.Register(ctx, req)
	require.NoError(t, err)
	approve(t, f, a)

	pending, err := f.svc.ListUsers(ctx, "092", true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "priya", pending[0].Username)

	all, err := f.svc.ListUsers(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.ListUsers(ctx, "999", false)
	require.Error(t, err)
	assert.Equal(t, "invalid_tenant", dErrors.ReasonOf(err))
}

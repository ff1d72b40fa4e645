// Package service implements the account lifecycle: registration, password
// and social login, admin approval, and refresh-token exchange. Provisioning
// decisions are made by the pure models.Decide and persisted here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"alumnet/internal/account/models"
	userstore "alumnet/internal/account/store/user"
	"alumnet/internal/audit"
	college "alumnet/internal/college/models"
	"alumnet/internal/identity"
	"alumnet/internal/identity/password"
	jwttoken "alumnet/internal/jwt_token"
	"alumnet/internal/platform/metrics"
	"alumnet/internal/token/revocation"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/platform/sentinel"
	"alumnet/pkg/requestcontext"
)

// UserStore is the persistence contract for account records.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByProviderSubject(ctx context.Context, provider identity.Provider, subjectID string) (*models.User, error)
	LinkProviderSubject(ctx context.Context, email string, provider identity.Provider, subjectID string, now time.Time) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context, filter userstore.ListFilter) ([]*models.User, error)
}

// CollegeResolver maps tenant codes to colleges. Implemented by the college
// service.
type CollegeResolver interface {
	ResolveByCode(ctx context.Context, code string) (*college.College, error)
	GetCollege(ctx context.Context, id uuid.UUID) (*college.College, error)
}

// TokenService mints and validates the JWT pairs handed to clients.
type TokenService interface {
	IssuePair(userID uuid.UUID, role, collegeCode string, now time.Time) (*jwttoken.Pair, error)
	IssueAccess(userID uuid.UUID, role, collegeCode string, now time.Time) (string, error)
	ValidateToken(tokenString, expectedType string) (*jwttoken.Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// Service orchestrates account operations.
type Service struct {
	users     UserStore
	colleges  CollegeResolver
	tokens    TokenService
	revoked   revocation.List
	verifiers map[identity.Provider]identity.TokenVerifier

	trustedDomains []string
	rotateRefresh  bool

	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithVerifier(provider identity.Provider, v identity.TokenVerifier) Option {
	return func(s *Service) { s.verifiers[provider] = v }
}

// WithTrustedDomains sets the deployment-wide campus domain allow-list used
// to mark student and alumni emails verified.
func WithTrustedDomains(domains []string) Option {
	return func(s *Service) { s.trustedDomains = domains }
}

// WithRefreshRotation enables single-use refresh tokens: every exchange
// issues a new pair and revokes the consumed token.
func WithRefreshRotation(enabled bool) Option {
	return func(s *Service) { s.rotateRefresh = enabled }
}

func New(users UserStore, colleges CollegeResolver, tokens TokenService, revoked revocation.List, opts ...Option) *Service {
	s := &Service{
		users:     users,
		colleges:  colleges,
		tokens:    tokens,
		revoked:   revoked,
		verifiers: make(map[identity.Provider]identity.TokenVerifier),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a password account. The initial flag set comes from
// models.Decide; nothing is written when the decision rejects the input.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.colleges.ResolveByCode(ctx, req.CollegeCode)
	if err != nil {
		return nil, err
	}

	role, _ := models.ParseRole(req.Role)
	prov, err := models.Decide(models.ProvisionInput{
		Role:           role,
		Email:          req.Email,
		RollNumber:     req.RollNumber,
		College:        c,
		TrustedDomains: s.trustedDomains,
	})
	if err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	u := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         role,
		CollegeID:    &c.ID,
		RollNumber:   req.RollNumber,
		LinkedInURL:  req.LinkedInURL,
		Verified:     prov.Verified,
		Approved:     prov.Approved,
		Active:       prov.Active,
		Staff:        prov.Staff,
		Superuser:    prov.Superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, translateCreate(err)
	}

	s.metrics.IncrementUsersCreated(string(role))
	s.emit(ctx, audit.Event{UserID: u.ID.String(), Action: audit.ActionAccountRegistered, Detail: string(role)})
	s.logger.InfoContext(ctx, "account registered",
		"user_id", u.ID, "role", role, "college_code", c.Code, "approved", u.Approved)
	return u, nil
}

// Authenticate performs a password login and mints a token pair. All
// credential failures return the same error so responses never reveal
// whether the email exists.
func (s *Service) Authenticate(ctx context.Context, req models.LoginRequest) (*models.User, *jwttoken.Pair, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Burn a comparison so unknown emails cost the same as bad
			// passwords.
			password.DummyCompare(req.Password)
			s.metrics.IncrementLogin("failure")
			return nil, nil, models.ErrInvalidCredentials()
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if !u.HasUsablePassword() {
		password.DummyCompare(req.Password)
		s.metrics.IncrementLogin("failure")
		return nil, nil, models.ErrInvalidCredentials()
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		s.metrics.IncrementLogin("failure")
		return nil, nil, models.ErrInvalidCredentials()
	}
	if err := u.CanAuthenticate(); err != nil {
		s.metrics.IncrementLogin("failure")
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncrementLogin("success")
	s.emit(ctx, audit.Event{UserID: u.ID.String(), Action: audit.ActionLoginSucceeded, Detail: "password"})
	return u, pair, nil
}

// Approve marks a pending account approved and active. Idempotent.
func (s *Service) Approve(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !u.ApplyApproval(requestcontext.Now(ctx)) {
		return u, nil
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve account")
	}

	s.metrics.IncrementApprovals()
	s.emit(ctx, audit.Event{UserID: u.ID.String(), Action: audit.ActionAccountApproved})
	s.logger.InfoContext(ctx, "account approved", "user_id", u.ID)
	return u, nil
}

// Deactivate disables an account. Existing access tokens expire naturally;
// refresh exchange is blocked immediately by the approval gate.
func (s *Service) Deactivate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !u.ApplyDeactivation(requestcontext.Now(ctx)) {
		return u, nil
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate account")
	}

	s.emit(ctx, audit.Event{UserID: u.ID.String(), Action: audit.ActionAccountDeactivated})
	s.logger.InfoContext(ctx, "account deactivated", "user_id", u.ID)
	return u, nil
}

// GetUser fetches a single account.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.loadUser(ctx, userID)
}

// ListUsers returns accounts for the admin console, optionally narrowed to
// one college and to accounts awaiting approval.
func (s *Service) ListUsers(ctx context.Context, collegeCode string, pendingOnly bool) ([]*models.User, error) {
	filter := userstore.ListFilter{PendingOnly: pendingOnly}
	if collegeCode != "" {
		c, err := s.colleges.ResolveByCode(ctx, collegeCode)
		if err != nil {
			return nil, err
		}
		filter.CollegeID = &c.ID
	}
	out, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return out, nil
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return u, nil
}

// IssueTokensFor mints a pair for an account that has already passed the
// approval gate, e.g. an auto-approved admin straight after registration.
func (s *Service) IssueTokensFor(ctx context.Context, u *models.User) (*jwttoken.Pair, error) {
	if err := u.CanAuthenticate(); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, u)
}

// AccessTokenTTL reports the configured access token lifetime, surfaced to
// clients as expires_in alongside every issued pair.
func (s *Service) AccessTokenTTL() time.Duration { return s.tokens.AccessTTL() }

// issuePair resolves the user's college code for the claims and mints a
// fresh access/refresh pair.
func (s *Service) issuePair(ctx context.Context, u *models.User) (*jwttoken.Pair, error) {
	code, err := s.collegeCodeFor(ctx, u)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(u.ID, string(u.Role), code, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue tokens")
	}
	return pair, nil
}

func (s *Service) collegeCodeFor(ctx context.Context, u *models.User) (string, error) {
	if u.CollegeID == nil {
		return "", nil
	}
	c, err := s.colleges.GetCollege(ctx, *u.CollegeID)
	if err != nil {
		return "", err
	}
	return c.Code, nil
}

// emit records an audit event; failures are logged, never surfaced to the
// caller.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

func translateCreate(err error) error {
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return dErrors.NewWithReason(dErrors.CodeConflict, "duplicate_email", "email already registered")
	case errors.Is(err, userstore.ErrDuplicateUsername):
		return dErrors.NewWithReason(dErrors.CodeConflict, "duplicate_username", "username already taken")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "account already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}
}

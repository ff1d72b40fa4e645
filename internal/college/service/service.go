package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"alumnet/internal/college/models"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/platform/sentinel"
	"alumnet/pkg/requestcontext"
)

// CollegeStore is the persistence contract for the tenant directory.
type CollegeStore interface {
	Create(ctx context.Context, college *models.College) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.College, error)
	FindByCode(ctx context.Context, code string) (*models.College, error)
	List(ctx context.Context) ([]*models.College, error)
}

// Service is the tenant directory: it owns college records and resolves a
// tenant code to the college whose domain anchors email trust.
type Service struct {
	colleges CollegeStore
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(colleges CollegeStore, opts ...Option) *Service {
	s := &Service{colleges: colleges, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCollege registers a new tenant. Administrative action only.
func (s *Service) CreateCollege(ctx context.Context, name, code, domain string) (*models.College, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	domain = strings.ToLower(strings.TrimSpace(domain))

	c, err := models.NewCollege(uuid.New(), name, code, domain, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.colleges.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "college name and code must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create college")
	}

	s.logger.InfoContext(ctx, "college created", "college_id", c.ID, "code", c.Code)
	return c, nil
}

// ResolveByCode maps a tenant code to its college. The code is mandatory for
// every registration path.
func (s *Service) ResolveByCode(ctx context.Context, code string) (*models.College, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, dErrors.NewWithReason(dErrors.CodeValidation, "invalid_tenant", "college code is required")
	}
	c, err := s.colleges.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewWithReason(dErrors.CodeNotFound, "invalid_tenant", "college code invalid")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve college")
	}
	return c, nil
}

// GetCollege fetches a college by ID.
func (s *Service) GetCollege(ctx context.Context, id uuid.UUID) (*models.College, error) {
	c, err := s.colleges.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "college not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load college")
	}
	return c, nil
}

// ListColleges returns every registered tenant.
func (s *Service) ListColleges(ctx context.Context) ([]*models.College, error) {
	out, err := s.colleges.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list colleges")
	}
	return out, nil
}

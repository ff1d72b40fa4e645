package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/email"
)

// College is the tenant record scoping users and trusted email domains.
//
// Invariants:
//   - Name is non-empty, unique, and at most 255 characters
//   - Code is the numeric tenant key, unique, at most 50 characters
//   - Domain, when set, is the authority for email-based trust
//
// Users reference a college by ID. Deleting a college clears the reference on
// dependent users; it never cascades into account deletion.
type College struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Domain    string    `json:"domain,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrustsEmail reports whether the address belongs to the college's official
// domain. Colleges without a domain trust nobody.
func (c *College) TrustsEmail(address string) bool {
	return email.MatchesDomain(address, c.Domain)
}

// NewCollege validates and constructs a college record.
func NewCollege(id uuid.UUID, name, code, domain string, now time.Time) (*College, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "college name cannot be empty")
	}
	if len(name) > 255 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "college name must be 255 characters or less")
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}
	return &College{
		ID:        id,
		Name:      name,
		Code:      code,
		Domain:    domain,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validateCode(code string) error {
	if code == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "college code cannot be empty")
	}
	if len(code) > 50 {
		return dErrors.New(dErrors.CodeInvariantViolation, "college code must be 50 characters or less")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeInvariantViolation, "college code must be numeric")
		}
	}
	return nil
}

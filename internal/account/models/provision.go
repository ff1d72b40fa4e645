package models

import (
	college "alumnet/internal/college/models"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/email"
)

// ProvisionInput is everything the initial account decision depends on. The
// college is the already-resolved tenant; TrustedDomains is the
// deployment-wide campus allow-list.
type ProvisionInput struct {
	Role           Role
	Email          string
	RollNumber     string
	College        *college.College
	TrustedDomains []string
}

// Provision holds the initial flag set for a new account.
type Provision struct {
	Verified  bool
	Approved  bool
	Active    bool
	Staff     bool
	Superuser bool
}

// Decide runs the account provisioning rules. It is pure: no storage, no
// clock, no I/O — the service resolves the tenant first and persists the
// outcome afterwards.
//
// Rules:
//   - student/alumni need a roll number
//   - admins must register with an address on the college's official domain
//     and come out approved, active, staff, and superuser
//   - student/alumni come out verified when their address is trusted, but
//     always unapproved and inactive until an administrator signs off
func Decide(in ProvisionInput) (Provision, error) {
	if _, err := ParseRole(string(in.Role)); err != nil {
		return Provision{}, err
	}
	if in.College == nil {
		return Provision{}, dErrors.NewWithReason(dErrors.CodeValidation, "invalid_tenant", "college code is required")
	}

	switch in.Role {
	case RoleStudent, RoleAlumni:
		if in.RollNumber == "" {
			return Provision{}, dErrors.NewWithReason(dErrors.CodeValidation, "missing_roll_number",
				"roll number is required for students and alumni")
		}
		return Provision{
			Verified: emailTrusted(in),
		}, nil

	case RoleAdmin:
		if in.College.Domain == "" || !in.College.TrustsEmail(in.Email) {
			return Provision{}, ErrUnauthorizedAdminDomain(in.College.Domain)
		}
		return Provision{
			Verified:  true,
			Approved:  true,
			Active:    true,
			Staff:     true,
			Superuser: true,
		}, nil
	}

	// Unreachable after ParseRole.
	return Provision{}, dErrors.New(dErrors.CodeInternal, "unhandled role")
}

// ErrUnauthorizedAdminDomain rejects admin signup from outside the college's
// official email domain.
func ErrUnauthorizedAdminDomain(domain string) error {
	msg := "admins must register with the official college email"
	if domain != "" {
		msg += " (@" + domain + ")"
	}
	return dErrors.NewWithReason(dErrors.CodeForbidden, "unauthorized_admin_domain", msg)
}

// emailTrusted reports whether the address is on the college's own domain or
// on the deployment allow-list of campus domains.
func emailTrusted(in ProvisionInput) bool {
	if in.College.TrustsEmail(in.Email) {
		return true
	}
	for _, d := range in.TrustedDomains {
		if email.MatchesDomain(in.Email, d) {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "alumnet/pkg/domain-errors"
)

// Role partitions accounts into the three platform populations.
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a wire-level role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return Role(s), nil
	default:
		return "", dErrors.NewWithReason(dErrors.CodeValidation, "invalid_role", "role must be student, alumni, or admin")
	}
}

// User is the single flat identity record. Social-only accounts carry an
// empty PasswordHash, which makes password login permanently unusable for
// them.
//
// Invariants:
//   - Email and Username are globally unique across all tenants
//   - GoogleSubjectID / LinkedInSubjectID are unique when set
//   - Role admin implies CollegeID set and the email on the college domain
//   - Approved accounts were either admins at creation or explicitly
//     approved by an administrator; Active never exceeds Approved for
//     student/alumni accounts
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`

	CollegeID   *uuid.UUID `json:"college_id,omitempty"`
	RollNumber  string     `json:"roll_number,omitempty"`
	LinkedInURL string     `json:"linkedin_url,omitempty"`

	GoogleSubjectID   string `json:"-"`
	LinkedInSubjectID string `json:"-"`

	Verified  bool `json:"verified"`
	Approved  bool `json:"is_approved"`
	Active    bool `json:"is_active"`
	Staff     bool `json:"-"`
	Superuser bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasUsablePassword reports whether password login is possible at all.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}

// CanAuthenticate checks the approval gate. Deactivated accounts fail the
// same way as unapproved ones; approval state is not an enumeration oracle.
func (u *User) CanAuthenticate() error {
	if !u.Approved || !u.Active {
		return ErrPendingApproval()
	}
	return nil
}

// ApplyApproval transitions the account into the approved, active state. It
// reports whether anything changed; approving an already-approved account is
// a no-op.
func (u *User) ApplyApproval(now time.Time) bool {
	if u.Approved && u.Active {
		return false
	}
	u.Approved = true
	u.Active = true
	u.UpdatedAt = now
	return true
}

// ApplyDeactivation blocks authentication without deleting the record. It
// reports whether anything changed.
func (u *User) ApplyDeactivation(now time.Time) bool {
	if !u.Active {
		return false
	}
	u.Active = false
	u.UpdatedAt = now
	return true
}

// ErrPendingApproval is the uniform error for accounts that may not log in
// yet (awaiting approval) or any more (deactivated).
func ErrPendingApproval() error {
	return dErrors.NewWithReason(dErrors.CodeForbidden, "pending_approval", "account is pending admin approval")
}

// ErrInvalidCredentials is the uniform login failure. Unknown email and
// wrong password produce this identical value so responses carry no
// enumeration signal.
func ErrInvalidCredentials() error {
	return dErrors.NewWithReason(dErrors.CodeUnauthorized, "invalid_credentials", "invalid credentials")
}

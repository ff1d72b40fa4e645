package models

import (
	"strings"

	dErrors "alumnet/pkg/domain-errors"
)

// RegisterRequest is the wire shape of a password registration.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	CollegeCode string `json:"college_code"`
	RollNumber  string `json:"roll_number"`
	LinkedInURL string `json:"linkedin_url"`
}

// Normalize trims whitespace and lowercases the email before validation.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.CollegeCode = strings.TrimSpace(r.CollegeCode)
	r.RollNumber = strings.TrimSpace(r.RollNumber)
	r.Phone = strings.TrimSpace(r.Phone)
	r.LinkedInURL = strings.TrimSpace(r.LinkedInURL)
}

// Validate checks the transport-level requirements: presence and shape, not
// business rules (those live in Decide).
func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Email == "" || !strings.Contains(r.Email[1:], "@") {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if _, err := ParseRole(r.Role); err != nil {
		return err
	}
	if r.CollegeCode == "" {
		return dErrors.NewWithReason(dErrors.CodeValidation, "invalid_tenant", "college code is required")
	}
	return nil
}

// LoginRequest is the wire shape of a password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

// SocialRequest is the wire shape shared by the Google and LinkedIn flows:
// one opaque provider credential plus the registration fields needed in case
// the account does not exist yet.
type SocialRequest struct {
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	CollegeCode string `json:"college_code"`
	RollNumber  string `json:"roll_number"`
}

func (r *SocialRequest) Normalize() {
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.CollegeCode = strings.TrimSpace(r.CollegeCode)
	r.RollNumber = strings.TrimSpace(r.RollNumber)
}

// RefreshRequest is the wire shape of a refresh-token exchange.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"alumnet/internal/platform/config"
	dErrors "alumnet/pkg/domain-errors"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims carried by both access and refresh tokens. TokenType keeps the two
// from being interchangeable at the refresh endpoint.
type Claims struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	CollegeCode string `json:"college_code,omitempty"`
	TokenType   string `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is an access/refresh token pair bound to one user.
type Pair struct {
	AccessToken      string    `json:"access"`
	RefreshToken     string    `json:"refresh"`
	AccessJTI        string    `json:"-"`
	RefreshJTI       string    `json:"-"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Service mints and validates the JWT pairs described by the deployment
// config: HS256, short-lived access tokens, week-scale refresh tokens.
type Service struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(cfg config.JWTConfig) *Service {
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

// AccessTTL exposes the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL exposes the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssuePair mints an access/refresh pair for an approved, active user.
func (s *Service) IssuePair(userID uuid.UUID, role, collegeCode string, now time.Time) (*Pair, error) {
	accessJTI := uuid.NewString()
	refreshJTI := uuid.NewString()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	access, err := s.sign(userID, role, collegeCode, TypeAccess, accessJTI, now, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, role, collegeCode, TypeRefresh, refreshJTI, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessJTI:        accessJTI,
		RefreshJTI:       refreshJTI,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess mints only an access token, used by the refresh exchange when
// rotation is disabled.
func (s *Service) IssueAccess(userID uuid.UUID, role, collegeCode string, now time.Time) (string, error) {
	return s.sign(userID, role, collegeCode, TypeAccess, uuid.NewString(), now, now.Add(s.accessTTL))
}

func (s *Service) sign(userID uuid.UUID, role, collegeCode, tokenType, jti string, now, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:      userID.String(),
		Role:        role,
		CollegeCode: collegeCode,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken parses and validates a token of the expected type.
func (s *Service) ValidateToken(tokenString, expectedType string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.TokenType != expectedType {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

// ValidateAccessToken satisfies the auth middleware contract.
func (s *Service) ValidateAccessToken(tokenString string) (string, string, error) {
	claims, err := s.ValidateToken(tokenString, TypeAccess)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}

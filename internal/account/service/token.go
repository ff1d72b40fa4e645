package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"alumnet/internal/audit"
	jwttoken "alumnet/internal/jwt_token"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/platform/sentinel"
	"alumnet/pkg/requestcontext"
)

// TokenExchange is the outcome of a refresh. Under rotation the refresh
// token is new and the consumed one is revoked; otherwise the client keeps
// using the one it sent.
type TokenExchange struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	ExpiresIn    int64  `json:"expires_in"`
}

var errInvalidRefreshToken = dErrors.New(dErrors.CodeUnauthorized, "invalid token")

// Refresh exchanges a refresh token for a new access token. Revoked and
// malformed tokens, tokens of the wrong type, and tokens for accounts that no
// longer exist all fail with the same opaque error.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenExchange, error) {
	if refreshToken == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "refresh token is required")
	}

	claims, err := s.tokens.ValidateToken(refreshToken, jwttoken.TypeRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "revocation check failed")
	}
	if revoked {
		return nil, errInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errInvalidRefreshToken
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errInvalidRefreshToken
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := u.CanAuthenticate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var exchange *TokenExchange
	if s.rotateRefresh {
		pair, err := s.tokens.IssuePair(u.ID, string(u.Role), claims.CollegeCode, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue tokens")
		}
		// Revoke the consumed token for its remaining lifetime; after that
		// the JWT expiry rejects it anyway.
		if claims.ExpiresAt != nil {
			if remaining := claims.ExpiresAt.Sub(now); remaining > 0 {
				if err := s.revoked.RevokeToken(ctx, claims.ID, remaining); err != nil {
					return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to revoke consumed token")
				}
			}
		}
		exchange = &TokenExchange{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	} else {
		access, err := s.tokens.IssueAccess(u.ID, string(u.Role), claims.CollegeCode, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue tokens")
		}
		exchange = &TokenExchange{AccessToken: access, RefreshToken: refreshToken}
	}
	exchange.ExpiresIn = int64(s.tokens.AccessTTL().Seconds())

	s.metrics.IncrementTokenRefreshes()
	s.emit(ctx, audit.Event{UserID: u.ID.String(), Action: audit.ActionTokenRefreshed})
	return exchange, nil
}

// RevokeRefreshToken invalidates a refresh token out of band, e.g. on
// logout. Invalid tokens are rejected the same way as at the refresh
// endpoint.
func (s *Service) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ValidateToken(refreshToken, jwttoken.TypeRefresh)
	if err != nil {
		return err
	}
	now := requestcontext.Now(ctx)
	// A claim without an expiry still gets blacklisted, for the full
	// configured lifetime since the mint time is unknown.
	remaining := s.tokens.RefreshTTL()
	if claims.ExpiresAt != nil {
		remaining = claims.ExpiresAt.Sub(now)
	}
	if remaining <= 0 {
		return nil
	}
	if err := s.revoked.RevokeToken(ctx, claims.ID, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to revoke token")
	}
	return nil
}

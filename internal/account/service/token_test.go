package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnet/internal/account/models"
	jwttoken "alumnet/internal/jwt_token"
	dErrors "alumnet/pkg/domain-errors"
)

func loginFixture(t *testing.T, fopts ...fixtureOption) (*fixture, *models.User, *jwttoken.Pair) {
	t.Helper()
	f := newFixture(t, fopts...)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, studentRequest())
	require.NoError(t, err)
	approve(t, f, u)

	u, pair, err := f.svc.Authenticate(ctx, models.LoginRequest{
		Email: "ravi@glbitm.ac.in", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return f, u, pair
}

func Test_Refresh_WithoutRotation(t *testing.T) {
	f, u, pair := loginFixture(t)
	ctx := context.Background()

	exchange, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, exchange.RefreshToken, "refresh token is reused when rotation is off")
	assert.Equal(t, int64(3600), exchange.ExpiresIn)

	claims, err := f.tokens.ValidateToken(exchange.AccessToken, jwttoken.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, "092", claims.CollegeCode)

	// The same refresh token keeps working.
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func Test_Refresh_WithRotation(t *testing.T) {
	f, _, pair := loginFixture(t, withRotation())
	ctx := context.Background()

	exchange, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, exchange.RefreshToken)

	// The consumed token is revoked for its remaining lifetime.
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// The rotated token works.
	_, err = f.svc.Refresh(ctx, exchange.RefreshToken)
	require.NoError(t, err)
}

func Test_Refresh_RejectsAccessToken(t *testing.T) {
	f, _, pair := loginFixture(t)

	_, err := f.svc.Refresh(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Refresh_RejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = f.svc.Refresh(context.Background(), "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_Refresh_DeactivatedAccountBlocked(t *testing.T) {
	f, u, pair := loginFixture(t)
	ctx := context.Background()

	_, err := f.svc.Deactivate(ctx, u.ID)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "pending_approval", dErrors.ReasonOf(err))
}

func Test_RevokeRefreshToken(t *testing.T) {
	f, _, pair := loginFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RevokeRefreshToken(ctx, pair.RefreshToken))

	_, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	err = f.svc.RevokeRefreshToken(ctx, "garbage")
	require.Error(t, err)
}

package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnet/internal/platform/config"
	dErrors "alumnet/pkg/domain-errors"
)

var jwtService = NewService(config.JWTConfig{
	SigningKey: "test-signing-key",
	Issuer:     "test-issuer",
	AccessTTL:  60 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
})

func Test_IssuePair(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	pair, err := jwtService.IssuePair(userID, "student", "092", now)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessJTI, pair.RefreshJTI)

	claims, err := jwtService.ValidateToken(pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "092", claims.CollegeCode)
	assert.Equal(t, pair.AccessJTI, claims.ID)
	assert.WithinDuration(t, now.Add(60*time.Minute), claims.ExpiresAt.Time, time.Minute)

	refreshClaims, err := jwtService.ValidateToken(pair.RefreshToken, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), refreshClaims.UserID)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), refreshClaims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_RejectsWrongType(t *testing.T) {
	pair, err := jwtService.IssuePair(uuid.New(), "alumni", "092", time.Now())
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(pair.RefreshToken, TypeAccess)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))

	_, err = jwtService.ValidateToken(pair.AccessToken, TypeRefresh)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string", TypeAccess)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	expired := NewService(config.JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "test-issuer",
		AccessTTL:  -time.Hour,
		RefreshTTL: -time.Hour,
	})
	pair, err := expired.IssuePair(uuid.New(), "student", "", time.Now())
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(pair.AccessToken, TypeAccess)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	other := NewService(config.JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "someone-else",
		AccessTTL:  time.Hour,
		RefreshTTL: time.Hour,
	})
	pair, err := other.IssuePair(uuid.New(), "student", "", time.Now())
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(pair.AccessToken, TypeAccess)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateAccessToken(t *testing.T) {
	userID := uuid.New()
	pair, err := jwtService.IssuePair(userID, "admin", "092", time.Now())
	require.NoError(t, err)

	gotID, gotRole, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), gotID)
	assert.Equal(t, "admin", gotRole)
}

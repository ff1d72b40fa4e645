// Package revocation tracks refresh-token JTIs that must be rejected before
// their natural expiry: tokens consumed under rotation and tokens revoked by
// an administrator. Entries carry a TTL equal to the token's remaining
// lifetime, after which the JWT expiry takes over.
package revocation

import (
	"context"
	"fmt"
	"time"

	"alumnet/pkg/platform/sentinel"
)

// List is the revocation-list contract shared by the memory, Redis, and
// PostgreSQL implementations.
type List interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}

// Clock lets stores inject time in tests.
type Clock func() time.Time

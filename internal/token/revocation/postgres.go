package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Postgres persists revoked token JTIs for deployments without Redis.
type Postgres struct {
	db    *sql.DB
	clock Clock
}

// PostgresOption configures a Postgres instance.
type PostgresOption func(*Postgres)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresOption {
	return func(p *Postgres) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// RevokeToken adds a token to the revocation list with TTL.
func (p *Postgres) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if jti == "" {
		return nil
	}
	expiresAt := p.clock().Add(ttl)
	query := `
		INSERT INTO token_revocations (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET
			expires_at = EXCLUDED.expires_at
	`
	if _, err := p.db.ExecContext(ctx, query, jti, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks if a token is in the revocation list.
func (p *Postgres) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var expiresAt time.Time
	err := p.db.QueryRowContext(ctx,
		`SELECT expires_at FROM token_revocations WHERE jti = $1`, jti).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	if p.clock().After(expiresAt) {
		return false, nil
	}
	return true, nil
}

// DeleteExpired removes entries whose TTL has lapsed. Safe to run from a
// periodic cleanup job; correctness never depends on it.
func (p *Postgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM token_revocations WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}
	return res.RowsAffected()
}

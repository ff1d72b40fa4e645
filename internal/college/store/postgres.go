package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"alumnet/internal/college/models"
	"alumnet/pkg/platform/sentinel"
)

// Postgres persists colleges. Uniqueness of name and code is enforced by
// unique indexes, never by check-then-insert.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, college *models.College) error {
	query := `
		INSERT INTO colleges (id, name, code, domain, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		college.ID, college.Name, college.Code, college.Domain,
		college.CreatedAt, college.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			switch pqErr.Constraint {
			case "colleges_code_key":
				return fmt.Errorf("college code already in use: %w", sentinel.ErrConflict)
			default:
				return fmt.Errorf("college name already in use: %w", sentinel.ErrConflict)
			}
		}
		return fmt.Errorf("create college: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.College, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		selectCollege+` WHERE id = $1`, id))
}

func (s *Postgres) FindByCode(ctx context.Context, code string) (*models.College, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		selectCollege+` WHERE code = $1`, code))
}

func (s *Postgres) List(ctx context.Context) ([]*models.College, error) {
	rows, err := s.db.QueryContext(ctx, selectCollege+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	defer rows.Close()

	var out []*models.College
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const selectCollege = `SELECT id, name, code, COALESCE(domain, ''), created_at, updated_at FROM colleges`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanOne(row *sql.Row) (*models.College, error) {
	c, err := scanCollege(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("college not found: %w", sentinel.ErrNotFound)
	}
	return c, err
}

func scanCollege(row rowScanner) (*models.College, error) {
	var c models.College
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Domain, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

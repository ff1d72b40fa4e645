package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"alumnet/internal/account/models"
	"alumnet/internal/identity"
	"alumnet/pkg/platform/sentinel"
)

// Postgres persists user records. Email, username, and provider subject ids
// are guarded by unique indexes; 23505 violations are translated by
// constraint name so callers see the same typed errors as the in-memory
// store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (
			id, username, email, password_hash, first_name, last_name, phone,
			role, college_id, roll_number, linkedin_url,
			google_subject_id, linkedin_subject_id,
			verified, approved, active, staff, superuser,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			NULLIF($12, ''), NULLIF($13, ''),
			$14, $15, $16, $17, $18,
			$19, $20
		)
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
		u.Role, u.CollegeID, u.RollNumber, u.LinkedInURL,
		u.GoogleSubjectID, u.LinkedInSubjectID,
		u.Verified, u.Approved, u.Active, u.Staff, u.Superuser,
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return translateUnique(err, "create user")
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, selectUser+` WHERE lower(email) = lower($1)`, email))
}

func (s *Postgres) FindByProviderSubject(ctx context.Context, provider identity.Provider, subjectID string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		selectUser+` WHERE `+subjectColumn(provider)+` = $1`, subjectID))
}

// LinkProviderSubject attaches a subject id to the user holding the email in
// a single UPDATE, so concurrent links cannot double-write. COALESCE keeps an
// already linked subject id in place.
func (s *Postgres) LinkProviderSubject(ctx context.Context, email string, provider identity.Provider, subjectID string, now time.Time) (*models.User, error) {
	col := subjectColumn(provider)
	query := `
		UPDATE users
		SET ` + col + ` = COALESCE(` + col + `, $2),
		    updated_at = CASE WHEN ` + col + ` IS NULL THEN $3 ELSE updated_at END
		WHERE lower(email) = lower($1)
		RETURNING ` + userColumns
	u, err := scanUser(s.db.QueryRowContext(ctx, query, email, subjectID, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user by email: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, translateUnique(err, "link provider subject")
	}
	return u, nil
}

func (s *Postgres) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET verified = $2, approved = $3, active = $4, staff = $5, superuser = $6,
		    updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		u.ID, u.Verified, u.Approved, u.Active, u.Staff, u.Superuser, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", u.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, filter ListFilter) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	var args []any
	if filter.CollegeID != nil {
		args = append(args, *filter.CollegeID)
		query += fmt.Sprintf(` AND college_id = $%d`, len(args))
	}
	if filter.PendingOnly {
		query += ` AND approved = FALSE`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

const userColumns = `id, username, email, password_hash, first_name, last_name, phone,
	role, college_id, COALESCE(roll_number, ''), COALESCE(linkedin_url, ''),
	COALESCE(google_subject_id, ''), COALESCE(linkedin_subject_id, ''),
	verified, approved, active, staff, superuser, created_at, updated_at`

const selectUser = `SELECT ` + userColumns + ` FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanOne(row *sql.Row) (*models.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return u, err
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.Role, &u.CollegeID, &u.RollNumber, &u.LinkedInURL,
		&u.GoogleSubjectID, &u.LinkedInSubjectID,
		&u.Verified, &u.Approved, &u.Active, &u.Staff, &u.Superuser,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func subjectColumn(provider identity.Provider) string {
	if provider == identity.ProviderLinkedIn {
		return "linkedin_subject_id"
	}
	return "google_subject_id"
}

func translateUnique(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrDuplicateEmail
		case "users_username_key":
			return ErrDuplicateUsername
		case "users_google_subject_id_key", "users_linkedin_subject_id_key":
			return ErrDuplicateSubject
		}
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

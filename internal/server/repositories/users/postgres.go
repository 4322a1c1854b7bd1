// Package users stores accounts in PostgreSQL.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/server/models"
)

const userColumns = `id, username, nickname, email, password, activated, activated_at`

// Unique constraints of the users table, mapped to the field they guard.
var uniqueFields = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, nickname, email, password, activated)
		 VALUES ($1, $2, $3, $4, FALSE)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Nickname, user.Email, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		if ferr := duplicateField(err); ferr != nil {
			return nil, ferr
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Activated = false
	user.ActivatedAt = nil
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// MarkActivated sets the activated flag and timestamp and returns the
// updated row. Only the first of several concurrent calls updates the row;
// the others get common.ErrorAlreadyActivated.
func (r *PostgresRepository) MarkActivated(ctx context.Context, id int64, at time.Time) (*models.User, error) {
	query :=
		`UPDATE users SET activated = TRUE, activated_at = $2
		 WHERE id = $1 AND activated = FALSE
		 RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, at))
	if errors.Is(err, common.ErrorNotFound) {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, common.ErrorAlreadyActivated
	}
	return u, err
}

// Update changes only the fields set in upd.
func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	query :=
		`UPDATE users SET username = COALESCE($2, username), nickname = COALESCE($3, nickname)
		 WHERE id = $1
		 RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, nullString(upd.Username), nullString(upd.Nickname)))
	if err != nil {
		if ferr := duplicateField(err); ferr != nil {
			return nil, ferr
		}
		return nil, err
	}
	return u, nil
}

// duplicateField converts a unique violation into a FieldError naming the
// colliding field. Other errors give nil.
func duplicateField(err error) error {
	constraint, ok := dbx.UniqueViolation(err)
	if !ok {
		return nil
	}
	field, known := uniqueFields[constraint]
	if !known {
		field = constraint
	}
	return &common.FieldError{Field: field, Err: common.ErrorAlreadyExists}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var activatedAt sql.NullTime

	err := row.Scan(&u.ID, &u.Username, &u.Nickname, &u.Email, &u.PasswordHash, &u.Activated, &activatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if activatedAt.Valid {
		t := activatedAt.Time
		u.ActivatedAt = &t
	}
	return u, nil
}

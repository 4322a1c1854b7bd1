// Package reactions stores reactions left on products.
package reactions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func lockName(key Key) string {
	return fmt.Sprintf("reaction:%d:%d:%s", key.ProductID, key.UserID, key.Kind)
}

// Lock takes a transaction-scoped advisory lock on key.
func (r *PostgresRepository) Lock(ctx context.Context, key Key) error {
	_, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockName(key))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context, key Key) (int, error) {
	query :=
		`SELECT count(*) FROM reactions
		 WHERE product_id = $1 AND user_id = $2 AND kind = $3`

	var n int
	if err := r.db.QueryRowContext(ctx, query, key.ProductID, key.UserID, key.Kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, key Key) (*models.Reaction, error) {
	query :=
		`INSERT INTO reactions (product_id, user_id, kind)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	re := &models.Reaction{ProductID: key.ProductID, UserID: key.UserID, Kind: key.Kind}
	err := r.db.QueryRowContext(ctx, query, key.ProductID, key.UserID, key.Kind).Scan(&re.ID, &re.CreatedAt)
	if dbx.ForeignKeyViolation(err) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return re, nil
}

// DeleteMostRecent removes the row of key with the highest id.
func (r *PostgresRepository) DeleteMostRecent(ctx context.Context, key Key) error {
	query :=
		`DELETE FROM reactions WHERE id = (
		   SELECT id FROM reactions
		   WHERE product_id = $1 AND user_id = $2 AND kind = $3
		   ORDER BY id DESC
		   LIMIT 1
		 )`

	res, err := r.db.ExecContext(ctx, query, key.ProductID, key.UserID, key.Kind)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, productID int64) ([]models.Reaction, error) {
	query :=
		`SELECT id, product_id, user_id, kind, created_at FROM reactions
		 WHERE product_id = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to select reactions: %w", err)
	}
	defer rows.Close()

	result := []models.Reaction{}
	for rows.Next() {
		var re models.Reaction
		if err := rows.Scan(&re.ID, &re.ProductID, &re.UserID, &re.Kind, &re.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, re)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// RecentOnUserProducts lists the latest reactions left on products owned by
// ownerID, with the product and the reacting user.
func (r *PostgresRepository) RecentOnUserProducts(ctx context.Context, ownerID int64, limit int) ([]models.ReactionActivity, error) {
	query :=
		`SELECT p.id, p.uuid, p.title, p.body, p.simple, p.img, p.duration, p.kind, p.status, p.user_id, p.created_at,
		        r.id, r.product_id, r.user_id, r.kind, r.created_at,
		        u.id, u.username, u.nickname, u.email, u.activated, u.activated_at
		 FROM reactions r
		 JOIN products p ON p.id = r.product_id
		 JOIN users u ON u.id = r.user_id
		 WHERE p.user_id = $1
		 ORDER BY r.created_at DESC, r.id DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select reactions: %w", err)
	}
	defer rows.Close()

	result := []models.ReactionActivity{}
	for rows.Next() {
		var a models.ReactionActivity
		var activatedAt sql.NullTime
		p, re, u := &a.Product, &a.Reaction, &a.User
		if err := rows.Scan(
			&p.ID, &p.UUID, &p.Title, &p.Body, &p.Simple, &p.Img, &p.Duration, &p.Kind, &p.Status, &p.UserID, &p.CreatedAt,
			&re.ID, &re.ProductID, &re.UserID, &re.Kind, &re.CreatedAt,
			&u.ID, &u.Username, &u.Nickname, &u.Email, &u.Activated, &activatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if activatedAt.Valid {
			t := activatedAt.Time
			u.ActivatedAt = &t
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Package tags stores the tag catalogue and the product/tag links.
package tags

import (
	"context"
	"fmt"

	"github.com/google/uuid"
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

func (r *PostgresRepository) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, uuid, name, kind FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	result := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UUID, &t.Name, &t.Kind); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Upsert inserts tags by name, one row at a time so new tags follow the
// seed order in the id sequence. Existing tags keep their id and uuid and
// only get their kind updated.
func (r *PostgresRepository) Upsert(ctx context.Context, tags []models.Tag) error {
	for _, t := range tags {
		if t.UUID == uuid.Nil {
			t.UUID = uuid.New()
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tags (uuid, name, kind) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET kind = EXCLUDED.kind`, t.UUID, t.Name, t.Kind)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// DeleteByName removes one tag. Its product links go with it.
func (r *PostgresRepository) DeleteByName(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE name = $1`, name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LinkProduct(ctx context.Context, productID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO products_tags (product_id, tag_id) VALUES ($1, $2)`, productID, tagID)
		if dbx.ForeignKeyViolation(err) {
			return &common.FieldError{Field: "tags", Err: common.ErrorNotFound}
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) UnlinkProduct(ctx context.Context, productID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products_tags WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ProductTagIDs(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag_id FROM products_tags WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to select product tags: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

// Package products stores portfolio entries in PostgreSQL.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/server/models"
)

const productColumns = `p.id, p.uuid, p.title, p.body, p.simple, p.img, p.duration, p.kind, p.status, p.user_id, p.created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts p and fills its id and creation time. A zero UUID is
// replaced with a random one.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}

	query :=
		`INSERT INTO products (uuid, title, body, simple, img, duration, kind, status, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.UUID, p.Title, p.Body, p.Simple, p.Img, p.Duration, p.Kind, p.Status, p.UserID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update overwrites the editable fields of the product with p.UUID.
func (r *PostgresRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`UPDATE products AS p
		 SET title = $2, body = $3, simple = $4, img = $5, duration = $6, kind = $7, status = $8
		 WHERE p.uuid = $1
		 RETURNING ` + productColumns

	return scanProduct(r.db.QueryRowContext(ctx, query,
		p.UUID, p.Title, p.Body, p.Simple, p.Img, p.Duration, p.Kind, p.Status))
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE uuid = $1`, id)
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

func (r *PostgresRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.uuid = $1`
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.user_id = $1 ORDER BY p.id`
	return r.list(ctx, query, userID)
}

// ListByTagName returns the products linked to the tag called name.
func (r *PostgresRepository) ListByTagName(ctx context.Context, name string) ([]models.Product, error) {
	query :=
		`SELECT ` + productColumns + `
		 FROM products p
		 JOIN products_tags pt ON pt.product_id = p.id
		 JOIN tags t ON t.id = pt.tag_id
		 WHERE t.name = $1
		 ORDER BY p.id DESC`
	return r.list(ctx, query, name)
}

// Recent returns all products, newest first.
func (r *PostgresRepository) Recent(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p ORDER BY p.id DESC`
	return r.list(ctx, query)
}

// Popular returns the products that have reactions, most reacted first.
func (r *PostgresRepository) Popular(ctx context.Context) ([]models.Product, error) {
	query :=
		`SELECT ` + productColumns + `
		 FROM reactions r
		 JOIN products p ON p.id = r.product_id
		 GROUP BY p.id
		 ORDER BY count(r.id) DESC, p.id DESC`
	return r.list(ctx, query)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(productFields(&p)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func productFields(p *models.Product) []any {
	return []any{&p.ID, &p.UUID, &p.Title, &p.Body, &p.Simple, &p.Img, &p.Duration, &p.Kind, &p.Status, &p.UserID, &p.CreatedAt}
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(productFields(p)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

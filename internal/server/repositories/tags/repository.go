package tags

import (
	"context"

	"github.com/tentech-me/tentech-api/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Tag, error)
	Upsert(ctx context.Context, tags []models.Tag) error
	DeleteByName(ctx context.Context, name string) error
	LinkProduct(ctx context.Context, productID int64, tagIDs []int64) error
	UnlinkProduct(ctx context.Context, productID int64) error
	ProductTagIDs(ctx context.Context, productID int64) ([]int64, error)
}

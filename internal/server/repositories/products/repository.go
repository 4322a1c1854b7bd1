package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/tentech-me/tentech-api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByUUID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Product, error)
	ListByTagName(ctx context.Context, name string) ([]models.Product, error)
	Recent(ctx context.Context) ([]models.Product, error)
	Popular(ctx context.Context) ([]models.Product, error)
}

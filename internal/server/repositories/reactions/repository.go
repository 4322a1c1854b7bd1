package reactions

import (
	"context"

	"github.com/tentech-me/tentech-api/internal/server/models"
)

// Key identifies the reactions of one user of one kind on one product.
type Key struct {
	ProductID int64
	UserID    int64
	Kind      string
}

type Repository interface {
	// Lock serializes writers of the same key until the surrounding
	// transaction ends. It must be called inside a transaction.
	Lock(ctx context.Context, key Key) error
	Count(ctx context.Context, key Key) (int, error)
	Insert(ctx context.Context, key Key) (*models.Reaction, error)
	DeleteMostRecent(ctx context.Context, key Key) error
	ListByProduct(ctx context.Context, productID int64) ([]models.Reaction, error)
	RecentOnUserProducts(ctx context.Context, ownerID int64, limit int) ([]models.ReactionActivity, error)
}

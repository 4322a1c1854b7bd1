package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/repositories/repomanager"
)

type ProductService struct {
	runner      dbx.TxRunner
	repomanager repomanager.RepositoryManager
}

func NewProductService(runner dbx.TxRunner, m repomanager.RepositoryManager) *ProductService {
	return &ProductService{runner: runner, repomanager: m}
}

// Create stores a product owned by userID together with its tag links.
func (s *ProductService) Create(ctx context.Context, userID int64, in models.ProductInput) (*models.ProductDetail, error) {
	var detail *models.ProductDetail
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		p := applyInput(&models.Product{UUID: uuid.New(), UserID: userID}, in)
		p, err := s.repomanager.Products(tx).Create(ctx, p)
		if err != nil {
			return err
		}
		if err := s.repomanager.Tags(tx).LinkProduct(ctx, p.ID, in.TagIDs); err != nil {
			return err
		}
		detail, err = s.detail(ctx, tx, p, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Update replaces the fields and tag links of a product. Only the owner
// may update it.
func (s *ProductService) Update(ctx context.Context, userID int64, id uuid.UUID, in models.ProductInput) (*models.ProductDetail, error) {
	var detail *models.ProductDetail
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		products := s.repomanager.Products(tx)
		tags := s.repomanager.Tags(tx)

		current, err := products.GetByUUID(ctx, id)
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return common.ErrorForbidden
		}

		p, err := products.Update(ctx, applyInput(current, in))
		if err != nil {
			return err
		}
		if err := tags.UnlinkProduct(ctx, p.ID); err != nil {
			return err
		}
		if err := tags.LinkProduct(ctx, p.ID, in.TagIDs); err != nil {
			return err
		}
		detail, err = s.detail(ctx, tx, p, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Delete removes a product owned by userID. Tag links and reactions go
// with it.
func (s *ProductService) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	return s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		products := s.repomanager.Products(tx)
		p, err := products.GetByUUID(ctx, id)
		if err != nil {
			return err
		}
		if p.UserID != userID {
			return common.ErrorForbidden
		}
		return products.Delete(ctx, id)
	})
}

// Get returns the product with its author, tag ids and reactions.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	db := s.runner.DB()
	p, err := s.repomanager.Products(db).GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, db, p, map[int64]*models.User{})
}

// Recent lists products newest first.
func (s *ProductService) Recent(ctx context.Context) ([]models.ProductDetail, error) {
	db := s.runner.DB()
	ps, err := s.repomanager.Products(db).Recent(ctx)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, db, ps, true)
}

// Popular lists products by reaction count, most reacted first.
func (s *ProductService) Popular(ctx context.Context) ([]models.ProductDetail, error) {
	db := s.runner.DB()
	ps, err := s.repomanager.Products(db).Popular(ctx)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, db, ps, true)
}

// ByUser lists the products of one user without repeating the author.
func (s *ProductService) ByUser(ctx context.Context, userID int64) ([]models.ProductDetail, error) {
	db := s.runner.DB()
	ps, err := s.repomanager.Products(db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, db, ps, false)
}

// ByTagName lists the products linked to the tag with the given name.
func (s *ProductService) ByTagName(ctx context.Context, name string) ([]models.ProductDetail, error) {
	db := s.runner.DB()
	ps, err := s.repomanager.Products(db).ListByTagName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, db, ps, true)
}

func (s *ProductService) details(ctx context.Context, db dbx.DBTX, ps []models.Product, withUser bool) ([]models.ProductDetail, error) {
	var users map[int64]*models.User
	if withUser {
		users = map[int64]*models.User{}
	}

	out := make([]models.ProductDetail, 0, len(ps))
	for i := range ps {
		d, err := s.detail(ctx, db, &ps[i], users)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// detail loads tag ids and reactions of p. A non-nil users map also loads
// the author and caches it by id.
func (s *ProductService) detail(ctx context.Context, db dbx.DBTX, p *models.Product, users map[int64]*models.User) (*models.ProductDetail, error) {
	tagIDs, err := s.repomanager.Tags(db).ProductTagIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.repomanager.Reactions(db).ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	d := &models.ProductDetail{Product: *p, TagIDs: tagIDs, Reactions: reactions}
	if users == nil {
		return d, nil
	}

	u, ok := users[p.UserID]
	if !ok {
		u, err = s.repomanager.Users(db).GetByID(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		users[p.UserID] = u
	}
	d.User = u
	return d, nil
}

func applyInput(p *models.Product, in models.ProductInput) *models.Product {
	p.Title = in.Title
	p.Body = in.Body
	p.Simple = in.Simple
	p.Img = in.Img
	p.Duration = in.Duration
	p.Kind = in.Kind
	p.Status = in.Status
	return p
}

package services

import (
	"context"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/logging"
	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/repositories/reactions"
	"github.com/tentech-me/tentech-api/internal/server/repositories/repomanager"
)

// RecentReactionsLimit is how many reactions RecentOnUserProducts returns.
const RecentReactionsLimit = 20

// ReactionService enforces the per-kind reaction cap. Every check and the
// write that follows it run in one transaction holding the key's lock.
type ReactionService struct {
	runner      dbx.TxRunner
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewReactionService(runner dbx.TxRunner, m repomanager.RepositoryManager, logger logging.Logger) *ReactionService {
	return &ReactionService{runner: runner, repomanager: m, logger: logger.With("module", "reactions")}
}

// Add records one reaction of kind by userID on productID. It fails with
// ErrTooMany once common.MaxReactionsPerKind reactions exist.
func (s *ReactionService) Add(ctx context.Context, userID, productID int64, kind string) (*models.Reaction, error) {
	key := reactions.Key{ProductID: productID, UserID: userID, Kind: kind}

	var added *models.Reaction
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reactions(tx)
		if err := repo.Lock(ctx, key); err != nil {
			return err
		}
		n, err := repo.Count(ctx, key)
		if err != nil {
			return err
		}
		if n >= common.MaxReactionsPerKind {
			return ErrTooMany
		}
		added, err = repo.Insert(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "reaction added", "product_id", productID, "user_id", userID, "kind", kind)
	return added, nil
}

// Sub removes the most recent reaction of kind by userID on productID. It
// fails with ErrTooFew when there is none.
func (s *ReactionService) Sub(ctx context.Context, userID, productID int64, kind string) error {
	key := reactions.Key{ProductID: productID, UserID: userID, Kind: kind}

	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reactions(tx)
		if err := repo.Lock(ctx, key); err != nil {
			return err
		}
		n, err := repo.Count(ctx, key)
		if err != nil {
			return err
		}
		if n < 1 {
			return ErrTooFew
		}
		return repo.DeleteMostRecent(ctx, key)
	})
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "reaction removed", "product_id", productID, "user_id", userID, "kind", kind)
	return nil
}

// RecentOnUserProducts returns the latest reactions left on
// ownerID's products.
func (s *ReactionService) RecentOnUserProducts(ctx context.Context, ownerID int64) ([]models.ReactionActivity, error) {
	return s.repomanager.Reactions(s.runner.DB()).RecentOnUserProducts(ctx, ownerID, RecentReactionsLimit)
}

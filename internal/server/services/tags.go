package services

import (
	"context"

	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/logging"
	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/repositories/repomanager"
	"github.com/tentech-me/tentech-api/internal/server/seeds"
)

type TagService struct {
	runner      dbx.TxRunner
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTagService(runner dbx.TxRunner, m repomanager.RepositoryManager, logger logging.Logger) *TagService {
	return &TagService{runner: runner, repomanager: m, logger: logger.With("module", "tags")}
}

// Seed makes the stored tags equal to seed. Nothing is written when every
// seed tag is already stored with the same kind and no other tag exists.
// Otherwise seed tags are upserted by name and tags missing from seed are
// deleted, in one transaction; surviving tags keep their ids and product
// links. It reports whether anything was written.
func (s *TagService) Seed(ctx context.Context, seed []seeds.TagSeed) (bool, error) {
	stored, err := s.repomanager.Tags(s.runner.DB()).List(ctx)
	if err != nil {
		return false, err
	}

	current := make(map[string]string, len(stored))
	for _, t := range stored {
		current[t.Name] = t.Kind
	}

	wanted := make(map[string]struct{}, len(seed))
	tags := make([]models.Tag, len(seed))
	changed := len(stored) != len(seed)
	for i, t := range seed {
		wanted[t.Name] = struct{}{}
		tags[i] = models.Tag{Name: t.Name, Kind: t.Kind}
		if kind, ok := current[t.Name]; !ok || kind != t.Kind {
			changed = true
		}
	}
	if !changed {
		return false, nil
	}

	var removed []string
	for _, t := range stored {
		if _, ok := wanted[t.Name]; !ok {
			removed = append(removed, t.Name)
		}
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tags(tx)
		if err := repo.Upsert(ctx, tags); err != nil {
			return err
		}
		for _, name := range removed {
			if err := repo.DeleteByName(ctx, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info(ctx, "tags seeded", "count", len(tags), "removed", len(removed))
	return true, nil
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.repomanager.Tags(s.runner.DB()).List(ctx)
}

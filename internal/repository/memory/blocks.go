package memory

import (
	"context"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

type blockRepository struct {
	s *Store
}

func (r *blockRepository) Find(_ context.Context, filter repository.BlockFilter) ([]domain.TrainingBlock, error) {
	var wanted map[string]struct{}
	if filter.IDs != nil {
		wanted = make(map[string]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = struct{}{}
		}
	}
	docs := r.s.blocks.filter(func(d blockDoc) bool {
		if wanted != nil {
			if _, ok := wanted[d.ID]; !ok {
				return false
			}
		}
		return filter.Coach == "" || d.Coach == filter.Coach
	})
	out := make([]domain.TrainingBlock, len(docs))
	for i, d := range docs {
		out[i] = d.TrainingBlock
	}
	return out, nil
}

func (r *blockRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.TrainingBlock, error) {
	if len(ids) == 0 {
		return []domain.TrainingBlock{}, nil
	}
	return r.Find(ctx, repository.BlockFilter{IDs: ids})
}

func (r *blockRepository) Upsert(_ context.Context, block domain.TrainingBlock) (*domain.TrainingBlock, error) {
	out := upsertAudited(r.s.blocks, block.ID, r.s.timestamp(), blockDoc{block}, nil)
	return &out.TrainingBlock, nil
}

func (r *blockRepository) SetResult(_ context.Context, id string, result []domain.ResultSample) error {
	now := r.s.timestamp()
	_, found := r.s.blocks.update(id, func(existing blockDoc, found bool) (blockDoc, bool) {
		if !found {
			return existing, false
		}
		next := blockDoc{existing.TrainingBlock}
		next.Result = result
		if next.Result == nil {
			next.Result = []domain.ResultSample{}
		}
		next.LastModified = now
		return next.clone(), true
	})
	if !found {
		return repository.ErrNotFound
	}
	return nil
}

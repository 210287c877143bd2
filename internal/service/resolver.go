package service

import (
	"context"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

// BlockResolver replaces the block ids stored on trainings with the block
// documents, using one batched lookup per call. Resolved blocks follow each
// training's stored order; ids without a block are skipped.
type BlockResolver struct {
	blocks repository.TrainingBlockRepository
}

func NewBlockResolver(blocks repository.TrainingBlockRepository) *BlockResolver {
	return &BlockResolver{blocks: blocks}
}

func (r *BlockResolver) Resolve(ctx context.Context, training domain.Training) (domain.TrainingWithBlocks, error) {
	resolved, err := r.ResolveAll(ctx, []domain.Training{training})
	if err != nil {
		return domain.TrainingWithBlocks{}, err
	}
	return resolved[0], nil
}

func (r *BlockResolver) ResolveAll(ctx context.Context, trainings []domain.Training) ([]domain.TrainingWithBlocks, error) {
	var ids []string
	for _, t := range trainings {
		ids = append(ids, t.TrainingBlocks...)
	}
	ids = repository.UniqueIDs(ids)

	byID := make(map[string]domain.TrainingBlock, len(ids))
	if len(ids) > 0 {
		blocks, err := r.blocks.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, b := range blocks {
			byID[b.ID] = b
		}
	}

	out := make([]domain.TrainingWithBlocks, len(trainings))
	for i, t := range trainings {
		resolved := make([]domain.TrainingBlock, 0, len(t.TrainingBlocks))
		for _, id := range t.TrainingBlocks {
			if b, ok := byID[id]; ok {
				resolved = append(resolved, b)
			}
		}
		out[i] = domain.TrainingWithBlocks{Training: t, TrainingBlocks: resolved}
	}
	return out, nil
}

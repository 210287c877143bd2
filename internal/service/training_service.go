package service

import (
	"context"
	"fmt"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

type TrainingService interface {
	// Training returns nil when the id is unknown.
	Training(ctx context.Context, id string) (*domain.TrainingWithBlocks, error)
	Trainings(ctx context.Context, filter repository.TrainingFilter) ([]domain.TrainingWithBlocks, error)
	// TrainingBlocks returns blocks in the order of filter.IDs when given.
	TrainingBlocks(ctx context.Context, filter repository.BlockFilter) ([]domain.TrainingBlock, error)
	UpsertTraining(ctx context.Context, input domain.TrainingInput) (*domain.Training, error)
	DeleteTraining(ctx context.Context, id string) (bool, error)
	UpsertTrainingBlock(ctx context.Context, block domain.TrainingBlock) (*domain.TrainingBlock, error)
}

type trainingService struct {
	trainingRepo repository.TrainingRepository
	blockRepo    repository.TrainingBlockRepository
	resolver     *BlockResolver
}

func NewTrainingService(
	trainingRepo repository.TrainingRepository,
	blockRepo repository.TrainingBlockRepository,
	resolver *BlockResolver,
) TrainingService {
	return &trainingService{trainingRepo: trainingRepo, blockRepo: blockRepo, resolver: resolver}
}

func (s *trainingService) Training(ctx context.Context, id string) (*domain.TrainingWithBlocks, error) {
	training, err := nilIfNotFound(s.trainingRepo.GetByID(ctx, id))
	if err != nil || training == nil {
		return nil, err
	}
	resolved, err := s.resolver.Resolve(ctx, *training)
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

func (s *trainingService) Trainings(ctx context.Context, filter repository.TrainingFilter) ([]domain.TrainingWithBlocks, error) {
	trainings, err := s.trainingRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveAll(ctx, trainings)
}

func (s *trainingService) TrainingBlocks(ctx context.Context, filter repository.BlockFilter) ([]domain.TrainingBlock, error) {
	blocks, err := s.blockRepo.Find(ctx, filter)
	if err != nil || filter.IDs == nil {
		return blocks, err
	}

	byID := make(map[string]domain.TrainingBlock, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}
	ordered := make([]domain.TrainingBlock, 0, len(blocks))
	for _, id := range repository.UniqueIDs(filter.IDs) {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered, nil
}

func (s *trainingService) UpsertTraining(ctx context.Context, input domain.TrainingInput) (*domain.Training, error) {
	if input.Type == "" || input.Coach == "" || input.User == "" {
		return nil, fmt.Errorf("%w: type, coach and user are required", ErrValidation)
	}
	if input.Date != nil && input.MaxDate != nil && input.MaxDate.Before(*input.Date) {
		return nil, fmt.Errorf("%w: maxDate is before date", ErrValidation)
	}
	return s.trainingRepo.Upsert(ctx, input)
}

func (s *trainingService) DeleteTraining(ctx context.Context, id string) (bool, error) {
	return s.trainingRepo.Delete(ctx, id)
}

func (s *trainingService) UpsertTrainingBlock(ctx context.Context, block domain.TrainingBlock) (*domain.TrainingBlock, error) {
	if block.Coach == "" {
		return nil, fmt.Errorf("%w: coach is required", ErrValidation)
	}
	if block.Result == nil {
		block.Result = []domain.ResultSample{}
	}
	return s.blockRepo.Upsert(ctx, block)
}

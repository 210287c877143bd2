package mongo

import (
	"context"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trainingBlockCollectionName = "TrainingBlocks"

// mongoTrainingBlockRepository implements repository.TrainingBlockRepository
type mongoTrainingBlockRepository struct {
	store *Store
}

func NewMongoTrainingBlockRepository(store *Store) repository.TrainingBlockRepository {
	return &mongoTrainingBlockRepository{store: store}
}

func (r *mongoTrainingBlockRepository) Find(ctx context.Context, filter repository.BlockFilter) ([]domain.TrainingBlock, error) {
	c, err := r.store.collection(trainingBlockCollectionName)
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	if filter.IDs != nil {
		query["_id"] = bson.M{"$in": filter.IDs}
	}
	if filter.Coach != "" {
		query["coach"] = filter.Coach
	}
	return findAll[domain.TrainingBlock](ctx, c, query, sortByID())
}

// FindByIDs is the batched lookup behind reference resolution. Unknown ids
// are silently absent from the result.
func (r *mongoTrainingBlockRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.TrainingBlock, error) {
	if len(ids) == 0 {
		return []domain.TrainingBlock{}, nil
	}
	return r.Find(ctx, repository.BlockFilter{IDs: ids})
}

func (r *mongoTrainingBlockRepository) Upsert(ctx context.Context, block domain.TrainingBlock) (*domain.TrainingBlock, error) {
	var out domain.TrainingBlock
	if err := upsertAudited(ctx, r.store, trainingBlockCollectionName, block.ID, block, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mongoTrainingBlockRepository) SetResult(ctx context.Context, id string, result []domain.ResultSample) error {
	c, err := r.store.collection(trainingBlockCollectionName)
	if err != nil {
		return err
	}
	if result == nil {
		result = []domain.ResultSample{}
	}
	update := bson.M{"$set": bson.M{
		"result":          result,
		fieldLastModified: r.store.now().UTC(),
	}}
	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func sortByID() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

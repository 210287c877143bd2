package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trainingCollectionName = "Trainings"

// mongoTrainingRepository implements repository.TrainingRepository
type mongoTrainingRepository struct {
	store *Store

	afterCount func(ctx context.Context) // test hook between count and update
}

// NewMongoTrainingRepository creates a new Training repository.
func NewMongoTrainingRepository(store *Store) repository.TrainingRepository {
	return &mongoTrainingRepository{store: store}
}

// GetByID retrieves a single training by its ID.
func (r *mongoTrainingRepository) GetByID(ctx context.Context, id string) (*domain.Training, error) {
	c, err := r.store.collection(trainingCollectionName)
	if err != nil {
		return nil, err
	}
	var training domain.Training
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&training); err != nil {
		return nil, translate(err)
	}
	return &training, nil
}

// Find lists trainings, earliest scheduled first.
func (r *mongoTrainingRepository) Find(ctx context.Context, filter repository.TrainingFilter) ([]domain.Training, error) {
	c, err := r.store.collection(trainingCollectionName)
	if err != nil {
		return nil, err
	}

	query := bson.M{}
	if filter.User != "" {
		query["user"] = filter.User
	}
	if filter.Coach != "" {
		query["coach"] = filter.Coach
	}
	if filter.Completed != nil {
		query["completed"] = *filter.Completed
	}
	if filter.Since != nil {
		query["date"] = bson.M{"$gte": filter.Since.UTC()}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[domain.Training](ctx, c, query, findOptions)
}

// TraineesOf returns the distinct trainees the coach has trainings with.
func (r *mongoTrainingRepository) TraineesOf(ctx context.Context, coach string) ([]string, error) {
	c, err := r.store.collection(trainingCollectionName)
	if err != nil {
		return nil, err
	}
	values, err := c.Distinct(ctx, "user", bson.M{"coach": coach})
	if err != nil {
		return nil, translate(err)
	}
	emails := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			emails = append(emails, s)
		}
	}
	return emails, nil
}

// Upsert creates or replaces a training. A new training starts not completed.
func (r *mongoTrainingRepository) Upsert(ctx context.Context, input domain.TrainingInput) (*domain.Training, error) {
	if input.TrainingBlocks == nil {
		input.TrainingBlocks = []string{}
	}
	var training domain.Training
	defaults := bson.M{"completed": false}
	if err := upsertAudited(ctx, r.store, trainingCollectionName, input.ID, input, defaults, &training); err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *mongoTrainingRepository) Delete(ctx context.Context, id string) (bool, error) {
	c, err := r.store.collection(trainingCollectionName)
	if err != nil {
		return false, err
	}
	result, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, translate(err)
	}
	return result.DeletedCount > 0, nil
}

// CompleteByBlockSet flips completed on the one training whose block list,
// read as a set, equals the given ids. The list must contain every id and
// nothing else; a block may appear in it more than once.
//
// Count and update are separate round trips, so the count is taken again
// after the update. When a second match appeared in between, the update is
// undone and the new count reported.
func (r *mongoTrainingRepository) CompleteByBlockSet(ctx context.Context, blockIDs []string) (int64, int64, error) {
	ids := repository.UniqueIDs(blockIDs)
	if len(ids) == 0 {
		return 0, 0, nil
	}
	c, err := r.store.collection(trainingCollectionName)
	if err != nil {
		return 0, 0, err
	}

	match := bson.M{"trainingBlocks": bson.M{
		"$all": ids,
		"$not": bson.M{"$elemMatch": bson.M{"$nin": ids}},
	}}
	matched, err := c.CountDocuments(ctx, match)
	if err != nil {
		return 0, 0, translate(err)
	}
	if matched != 1 {
		return matched, 0, nil
	}
	if r.afterCount != nil {
		r.afterCount(ctx)
	}

	// an already completed training is matched but left unmodified
	filter := bson.M{"trainingBlocks": match["trainingBlocks"], "completed": bson.M{"$ne": true}}
	update := bson.M{"$set": bson.M{"completed": true, fieldLastModified: r.store.now().UTC()}}
	var updated struct {
		ID string `bson:"_id"`
	}
	err = c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetProjection(bson.M{"_id": 1})).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return matched, 0, nil
	}
	if err != nil {
		return matched, 0, fmt.Errorf("complete training: %w", translate(err))
	}

	recount, err := c.CountDocuments(ctx, match)
	if err != nil {
		return matched, 1, fmt.Errorf("recount trainings: %w", translate(err))
	}
	if recount > 1 {
		undo := bson.M{"$set": bson.M{"completed": false, fieldLastModified: r.store.now().UTC()}}
		if _, err := c.UpdateOne(ctx, bson.M{"_id": updated.ID}, undo); err != nil {
			return recount, 1, fmt.Errorf("undo completion of %s: %w", updated.ID, translate(err))
		}
		return recount, 0, nil
	}
	return matched, 1, nil
}

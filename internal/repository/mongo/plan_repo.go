package mongo

import (
	"context"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "Plans"

type mongoPlanRepository struct {
	store *Store
}

func NewMongoPlanRepository(store *Store) repository.PlanRepository {
	return &mongoPlanRepository{store: store}
}

// Find lists plans, cheapest first.
func (r *mongoPlanRepository) Find(ctx context.Context, filter repository.PlanFilter) ([]domain.Plan, error) {
	c, err := r.store.collection(planCollectionName)
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	if filter.Coach != "" {
		query["coach"] = filter.Coach
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "monthlyPrice", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[domain.Plan](ctx, c, query, findOptions)
}

func (r *mongoPlanRepository) Upsert(ctx context.Context, plan domain.Plan) (*domain.Plan, error) {
	var out domain.Plan
	if err := upsertAudited(ctx, r.store, planCollectionName, plan.ID, plan, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

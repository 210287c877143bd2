package memory

import (
	"context"
	"sort"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

type planRepository struct {
	s *Store
}

func (r *planRepository) Find(_ context.Context, filter repository.PlanFilter) ([]domain.Plan, error) {
	docs := r.s.plans.filter(func(d planDoc) bool {
		return filter.Coach == "" || d.Coach == filter.Coach
	})
	out := make([]domain.Plan, len(docs))
	for i, d := range docs {
		out[i] = d.Plan
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MonthlyPrice < out[j].MonthlyPrice })
	return out, nil
}

func (r *planRepository) Upsert(_ context.Context, plan domain.Plan) (*domain.Plan, error) {
	out := upsertAudited(r.s.plans, plan.ID, r.s.timestamp(), planDoc{plan}, nil)
	return &out.Plan, nil
}

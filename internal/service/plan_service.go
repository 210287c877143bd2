package service

import (
	"context"
	"fmt"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

type PlanService interface {
	Plans(ctx context.Context, coach string) ([]domain.Plan, error)
	UpsertPlan(ctx context.Context, plan domain.Plan) (*domain.Plan, error)
}

type planService struct {
	planRepo repository.PlanRepository
}

func NewPlanService(planRepo repository.PlanRepository) PlanService {
	return &planService{planRepo: planRepo}
}

func (s *planService) Plans(ctx context.Context, coach string) ([]domain.Plan, error) {
	return s.planRepo.Find(ctx, repository.PlanFilter{Coach: coach})
}

func (s *planService) UpsertPlan(ctx context.Context, plan domain.Plan) (*domain.Plan, error) {
	if plan.Coach == "" {
		return nil, fmt.Errorf("%w: coach is required", ErrValidation)
	}
	switch plan.Type {
	case domain.PlanPremium, domain.PlanStandard, domain.PlanBasic:
	default:
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrValidation, plan.Type)
	}
	if plan.MonthlyPrice < 0 {
		return nil, fmt.Errorf("%w: monthlyPrice cannot be negative", ErrValidation)
	}
	return s.planRepo.Upsert(ctx, plan)
}

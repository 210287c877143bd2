package memory

import (
	"context"
	"strings"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

// userRepository keys users by email, which makes uniqueness structural.
type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	candidate := *user
	candidate.ID = newID()
	candidate.RegistryDate = r.s.timestamp()

	_, created := r.s.users.update(user.Email, func(existing userDoc, found bool) (userDoc, bool) {
		if found {
			return existing, false
		}
		return userDoc{candidate}.clone(), true
	})
	if !created {
		return repository.ErrConflict
	}
	user.ID, user.RegistryDate = candidate.ID, candidate.RegistryDate
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	d, ok := r.s.users.get(email)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d.User, nil
}

func (r *userRepository) GetByEmails(_ context.Context, emails []string) ([]domain.User, error) {
	wanted := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		wanted[e] = struct{}{}
	}
	return users(r.s.users.filter(func(d userDoc) bool {
		_, ok := wanted[d.Email]
		return ok
	})), nil
}

func (r *userRepository) List(_ context.Context) ([]domain.User, error) {
	return users(r.s.users.filter(nil)), nil
}

func (r *userRepository) FindCoaches(_ context.Context, filter repository.CoachFilter) ([]domain.User, error) {
	tokens := repository.SearchTokens(filter.Search)
	return users(r.s.users.filter(func(d userDoc) bool {
		if d.Type != domain.UserTypeCoach {
			return false
		}
		if filter.Province != "" && d.Province != filter.Province {
			return false
		}
		if !containsAll(d.Fields, filter.Fields) {
			return false
		}
		searchable := []string{
			strings.ToLower(d.District),
			strings.ToLower(d.Name),
			strings.ToLower(d.LastName),
			strings.ToLower(d.Email),
		}
		for _, tok := range tokens {
			hit := false
			for _, field := range searchable {
				if strings.Contains(field, tok) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
		return true
	})), nil
}

func (r *userRepository) Update(_ context.Context, patch domain.UserPatch) (*domain.User, error) {
	out, found := r.s.users.update(patch.Email, func(existing userDoc, found bool) (userDoc, bool) {
		if !found {
			return existing, false
		}
		next := existing.clone()
		patch.Apply(&next.User)
		return next, true
	})
	if !found {
		return nil, repository.ErrNotFound
	}
	return &out.User, nil
}

func (r *userRepository) Delete(_ context.Context, email string) (bool, error) {
	return r.s.users.delete(email), nil
}

func users(docs []userDoc) []domain.User {
	out := make([]domain.User, len(docs))
	for i, d := range docs {
		out[i] = d.User
	}
	return out
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

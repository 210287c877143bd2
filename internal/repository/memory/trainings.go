package memory

import (
	"context"
	"sort"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

type trainingRepository struct {
	s *Store
}

func (r *trainingRepository) GetByID(_ context.Context, id string) (*domain.Training, error) {
	d, ok := r.s.trainings.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d.Training, nil
}

// Find orders by date then id, undated trainings first, like the Mongo sort.
func (r *trainingRepository) Find(_ context.Context, filter repository.TrainingFilter) ([]domain.Training, error) {
	docs := r.s.trainings.filter(func(d trainingDoc) bool {
		if filter.User != "" && d.User != filter.User {
			return false
		}
		if filter.Coach != "" && d.Coach != filter.Coach {
			return false
		}
		if filter.Completed != nil && d.Completed != *filter.Completed {
			return false
		}
		if filter.Since != nil && (d.Date == nil || d.Date.Before(*filter.Since)) {
			return false
		}
		return true
	})
	out := make([]domain.Training, len(docs))
	for i, d := range docs {
		out[i] = d.Training
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		}
		return a.Before(*b)
	})
	return out, nil
}

func (r *trainingRepository) TraineesOf(_ context.Context, coach string) ([]string, error) {
	var emails []string
	for _, d := range r.s.trainings.filter(func(d trainingDoc) bool { return d.Coach == coach }) {
		emails = append(emails, d.User)
	}
	return repository.UniqueIDs(emails), nil
}

func (r *trainingRepository) Upsert(_ context.Context, input domain.TrainingInput) (*domain.Training, error) {
	doc := trainingDoc{domain.Training{
		Type:           input.Type,
		Coach:          input.Coach,
		User:           input.User,
		Date:           cloneTime(input.Date),
		MaxDate:        cloneTime(input.MaxDate),
		Description:    input.Description,
		TrainingBlocks: cloneSlice(input.TrainingBlocks),
	}}
	merge := func(doc, existing trainingDoc, found bool) trainingDoc {
		switch {
		case input.Completed != nil:
			doc.Completed = *input.Completed
		case found:
			doc.Completed = existing.Completed
		default:
			doc.Completed = false
		}
		return doc
	}
	out := upsertAudited(r.s.trainings, input.ID, r.s.timestamp(), doc, merge)
	return &out.Training, nil
}

func (r *trainingRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.s.trainings.delete(id), nil
}

// CompleteByBlockSet holds the write lock across match and update, so unlike
// the Mongo version the two steps cannot interleave with other writers.
func (r *trainingRepository) CompleteByBlockSet(_ context.Context, blockIDs []string) (int64, int64, error) {
	ids := repository.UniqueIDs(blockIDs)
	if len(ids) == 0 {
		return 0, 0, nil
	}
	c := r.s.trainings
	c.mu.Lock()
	defer c.mu.Unlock()

	var matches []string
	for key, d := range c.items {
		if sameSet(d.TrainingBlocks, ids) {
			matches = append(matches, key)
		}
	}
	if len(matches) != 1 {
		return int64(len(matches)), 0, nil
	}
	d := c.items[matches[0]]
	if d.Completed {
		return 1, 0, nil
	}
	d.Completed = true
	d.LastModified = r.s.timestamp()
	c.items[matches[0]] = d
	return 1, 1, nil
}

// sameSet reports whether stored, read as a set, equals ids. Repeated
// entries in stored do not matter.
func sameSet(stored, ids []string) bool {
	return containsAll(stored, ids) && containsAll(ids, stored)
}

package memory

import (
	"context"
	"sort"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

type messageRepository struct {
	s *Store
}

func (r *messageRepository) Create(_ context.Context, msg *domain.Message) error {
	msg.ID = newID()
	stored := *msg
	r.s.messages.update(msg.ID, func(messageDoc, bool) (messageDoc, bool) {
		return messageDoc{stored}, true
	})
	return nil
}

func (r *messageRepository) Find(_ context.Context, filter repository.MessageFilter) ([]domain.Message, error) {
	docs := r.s.messages.filter(func(d messageDoc) bool {
		if filter.From != "" && d.From != filter.From {
			return false
		}
		if filter.To != "" && d.To != filter.To {
			return false
		}
		return filter.Type == "" || d.Type == filter.Type
	})
	out := make([]domain.Message, len(docs))
	for i, d := range docs {
		out[i] = d.Message
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

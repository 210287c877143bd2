package service

import (
	"context"
	"fmt"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
)

type MessageService interface {
	Messages(ctx context.Context, filter repository.MessageFilter) ([]domain.Message, error)
	CreateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepository) MessageService {
	return &messageService{messageRepo: messageRepo, now: time.Now}
}

func (s *messageService) Messages(ctx context.Context, filter repository.MessageFilter) ([]domain.Message, error) {
	return s.messageRepo.Find(ctx, filter)
}

func (s *messageService) CreateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	if msg.From == "" || msg.To == "" || msg.Subject == "" {
		return nil, fmt.Errorf("%w: from, to and subject are required", ErrValidation)
	}
	switch msg.Type {
	case "":
		msg.Type = domain.MessageRegular
	case domain.MessageRegular, domain.MessageJoin:
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrValidation, msg.Type)
	}
	if msg.Date.IsZero() {
		msg.Date = s.now().UTC().Truncate(time.Millisecond)
	}
	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package notification

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, n *Notification) error {
	return s.repo.Create(ctx, n)
}

func (s *Service) List(ctx context.Context, email string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByRecipient(ctx, email, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, email string) (int, error) {
	return s.repo.UnreadCount(ctx, email)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID, email string) error {
	return s.repo.MarkRead(ctx, id, email)
}

func (s *Service) MarkAllRead(ctx context.Context, email string) (int, error) {
	return s.repo.MarkAllRead(ctx, email)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, email string) error {
	return s.repo.Delete(ctx, id, email)
}

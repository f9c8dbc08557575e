package service

import (
	"context"

	"cityconnect/internal/models"
	"cityconnect/internal/security"
)

type ModerationStore interface {
	PendingComplaints(ctx context.Context) ([]models.ModerationItem, error)
	PendingReviews(ctx context.Context) ([]models.ModerationItem, error)
	Posts(ctx context.Context) ([]models.ModerationItem, error)
}

type ModerationService struct {
	store ModerationStore
}

func NewModerationService(store ModerationStore) *ModerationService {
	return &ModerationService{store: store}
}

// Queue lists open complaints, then unapproved reviews, then every post.
func (s *ModerationService) Queue(ctx context.Context, actor security.Principal) ([]models.ModerationItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	sources := []func(context.Context) ([]models.ModerationItem, error){
		s.store.PendingComplaints,
		s.store.PendingReviews,
		s.store.Posts,
	}

	items := make([]models.ModerationItem, 0)
	for _, source := range sources {
		batch, err := source(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"cityconnect/internal/apperr"
	"cityconnect/internal/ids"
	"cityconnect/internal/models"
	"cityconnect/internal/security"
)

type ReviewStore interface {
	Create(ctx context.Context, review models.Review) (models.Review, error)
	ListApproved(ctx context.Context) ([]models.Review, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ReviewService struct {
	reviews ReviewStore
	log     zerolog.Logger
}

func NewReviewService(reviews ReviewStore, log zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, log: log}
}

type ReviewInput struct {
	ServiceName string
	Rating      int
	Comment     string
}

// Create stores the review unapproved; it stays out of the public feed
// until an admin approves it.
func (s *ReviewService) Create(ctx context.Context, actor security.Principal, input ReviewInput) (models.Review, error) {
	serviceName := strings.TrimSpace(input.ServiceName)
	if serviceName == "" {
		return models.Review{}, apperr.Validation("service name is required")
	}
	if input.Rating < models.MinRating || input.Rating > models.MaxRating {
		return models.Review{}, apperr.Validation("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}

	return s.reviews.Create(ctx, models.Review{
		ID:          ids.New(),
		UserID:      actor.UserID,
		ServiceName: serviceName,
		Rating:      input.Rating,
		Comment:     strings.TrimSpace(input.Comment),
	})
}

func (s *ReviewService) ListApproved(ctx context.Context) ([]models.Review, error) {
	return s.reviews.ListApproved(ctx)
}

// Approve is one-way. Approving an approved review writes again and
// succeeds.
func (s *ReviewService) Approve(ctx context.Context, actor security.Principal, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.reviews.Approve(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("review_id", id).Msg("review approved")
	return nil
}

func (s *ReviewService) Delete(ctx context.Context, actor security.Principal, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("review_id", id).Msg("review deleted")
	return nil
}

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

type ComplaintStore interface {
	Create(ctx context.Context, complaint models.Complaint) (models.Complaint, error)
	ListByUser(ctx context.Context, userID string) ([]models.Complaint, error)
	ListAll(ctx context.Context, status *models.ComplaintStatus) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (models.Complaint, error)
}

type ComplaintService struct {
	complaints ComplaintStore
	log        zerolog.Logger
}

func NewComplaintService(complaints ComplaintStore, log zerolog.Logger) *ComplaintService {
	return &ComplaintService{complaints: complaints, log: log}
}

type ComplaintInput struct {
	Category    string
	Description string
	Location    string
	Image       string
}

func (s *ComplaintService) Create(ctx context.Context, actor security.Principal, input ComplaintInput) (models.Complaint, error) {
	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if category == "" {
		return models.Complaint{}, apperr.Validation("category is required")
	}
	if description == "" {
		return models.Complaint{}, apperr.Validation("description is required")
	}

	return s.complaints.Create(ctx, models.Complaint{
		ID:          ids.New(),
		UserID:      actor.UserID,
		Category:    category,
		Description: description,
		Location:    strings.TrimSpace(input.Location),
		Image:       input.Image,
		Status:      models.ComplaintSubmitted,
	})
}

func (s *ComplaintService) Mine(ctx context.Context, actor security.Principal) ([]models.Complaint, error) {
	return s.complaints.ListByUser(ctx, actor.UserID)
}

// ListAll returns every complaint; an empty status means no filter.
func (s *ComplaintService) ListAll(ctx context.Context, actor security.Principal, status string) ([]models.Complaint, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if status == "" {
		return s.complaints.ListAll(ctx, nil)
	}
	parsed, err := models.ParseComplaintStatus(status)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	return s.complaints.ListAll(ctx, &parsed)
}

// UpdateStatus lets an admin move a complaint to any of the four states.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor security.Principal, id string, status string) (models.Complaint, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Complaint{}, err
	}
	parsed, err := models.ParseComplaintStatus(status)
	if err != nil {
		return models.Complaint{}, apperr.Validation("status must be one of Submitted, In Review, In Progress, Resolved")
	}

	complaint, err := s.complaints.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return models.Complaint{}, err
	}
	s.log.Info().Str("complaint_id", id).Str("status", string(parsed)).Msg("complaint status updated")
	return complaint, nil
}

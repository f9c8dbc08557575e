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

// RecentAnnouncements is how many announcements the public list shows.
const RecentAnnouncements = 5

type AnnouncementStore interface {
	Create(ctx context.Context, a models.Announcement) (models.Announcement, error)
	ListRecent(ctx context.Context, limit int) ([]models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type AnnouncementService struct {
	announcements AnnouncementStore
	log           zerolog.Logger
}

func NewAnnouncementService(announcements AnnouncementStore, log zerolog.Logger) *AnnouncementService {
	return &AnnouncementService{announcements: announcements, log: log}
}

type AnnouncementInput struct {
	Title    string
	Message  string
	Priority string
}

func (s *AnnouncementService) Create(ctx context.Context, actor security.Principal, input AnnouncementInput) (models.Announcement, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Announcement{}, err
	}

	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	if title == "" || message == "" {
		return models.Announcement{}, apperr.Validation("title and message are required")
	}
	priority, err := models.ParsePriority(input.Priority)
	if err != nil {
		return models.Announcement{}, apperr.Validation("priority must be Normal or High")
	}

	return s.announcements.Create(ctx, models.Announcement{
		ID:       ids.New(),
		Title:    title,
		Message:  message,
		Priority: priority,
	})
}

func (s *AnnouncementService) Recent(ctx context.Context) ([]models.Announcement, error) {
	return s.announcements.ListRecent(ctx, RecentAnnouncements)
}

func (s *AnnouncementService) Delete(ctx context.Context, actor security.Principal, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.announcements.Delete(ctx, id)
}

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

type GroupStore interface {
	Create(ctx context.Context, group models.Group) (models.Group, error)
	Get(ctx context.Context, id string) (models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	AddMember(ctx context.Context, groupID, userID string) (bool, error)
	Members(ctx context.Context, groupID string) ([]models.Member, error)
	AppendMessage(ctx context.Context, msg models.Message) (models.Message, error)
	Messages(ctx context.Context, groupID string) ([]models.Message, error)
	Delete(ctx context.Context, id string) error
}

type GroupService struct {
	groups    GroupStore
	users     UserStore
	publisher MessagePublisher
	log       zerolog.Logger
}

func NewGroupService(groups GroupStore, users UserStore, publisher MessagePublisher, log zerolog.Logger) *GroupService {
	return &GroupService{
		groups:    groups,
		users:     users,
		publisher: publisher,
		log:       log,
	}
}

// Create stores the group with its creator as the first member.
func (s *GroupService) Create(ctx context.Context, actor security.Principal, name, description string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, apperr.Validation("group name is required")
	}

	group, err := s.groups.Create(ctx, models.Group{
		ID:          ids.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     actor.UserID,
	})
	if err != nil {
		return models.Group{}, err
	}
	s.log.Info().Str("group_id", group.ID).Str("owner_id", actor.UserID).Msg("group created")
	return group, nil
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}

type JoinResult struct {
	GroupID string
	// AlreadyMember is true when the call changed nothing.
	AlreadyMember bool
}

func (s *GroupService) Join(ctx context.Context, actor security.Principal, groupID string) (JoinResult, error) {
	joined, err := s.groups.AddMember(ctx, groupID, actor.UserID)
	if err != nil {
		return JoinResult{}, err
	}
	return JoinResult{GroupID: groupID, AlreadyMember: !joined}, nil
}

// PostMessage appends to the group log. The author's current display name
// is copied onto the message.
func (s *GroupService) PostMessage(ctx context.Context, actor security.Principal, groupID, text string) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, apperr.Validation("message text is required")
	}
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return models.Message{}, err
	}

	author, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return models.Message{}, err
	}

	msg, err := s.groups.AppendMessage(ctx, models.Message{
		ID:         ids.New(),
		GroupID:    groupID,
		UserID:     author.ID,
		AuthorName: author.Name,
		Body:       text,
	})
	if err != nil {
		return models.Message{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.log.Warn().Err(err).Str("group_id", groupID).Msg("publish message failed")
		}
	}
	return msg, nil
}

func (s *GroupService) Messages(ctx context.Context, groupID string) ([]models.Message, error) {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groups.Messages(ctx, groupID)
}

func (s *GroupService) Members(ctx context.Context, groupID string) ([]models.Member, error) {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groups.Members(ctx, groupID)
}

// Exists is used before opening a live stream.
func (s *GroupService) Exists(ctx context.Context, groupID string) error {
	_, err := s.groups.Get(ctx, groupID)
	return err
}

func (s *GroupService) Delete(ctx context.Context, actor security.Principal, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("group_id", id).Msg("group deleted")
	return nil
}

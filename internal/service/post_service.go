package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"cityconnect/internal/apperr"
	"cityconnect/internal/ids"
	"cityconnect/internal/models"
	"cityconnect/internal/queue"
	"cityconnect/internal/security"
)

type PostStore interface {
	Create(ctx context.Context, post models.Post) (models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Like(ctx context.Context, id string) (int, error)
	ToggleSupport(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, comment models.Comment) (models.Comment, error)
	Comments(ctx context.Context, postID string) ([]models.Comment, error)
	Delete(ctx context.Context, id string, ownerID string) (models.Post, error)
}

type PostService struct {
	posts PostStore
	tasks TaskQueue
	log   zerolog.Logger
}

func NewPostService(posts PostStore, tasks TaskQueue, log zerolog.Logger) *PostService {
	return &PostService{posts: posts, tasks: tasks, log: log}
}

func (s *PostService) Create(ctx context.Context, actor security.Principal, content string, image string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Post{}, apperr.Validation("post content is required")
	}

	return s.posts.Create(ctx, models.Post{
		ID:      ids.New(),
		UserID:  actor.UserID,
		Content: content,
		Image:   image,
	})
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) Like(ctx context.Context, id string) (int, error) {
	return s.posts.Like(ctx, id)
}

func (s *PostService) ToggleSupport(ctx context.Context, actor security.Principal, postID string) (bool, error) {
	return s.posts.ToggleSupport(ctx, postID, actor.UserID)
}

func (s *PostService) AddComment(ctx context.Context, actor security.Principal, postID, body string) (models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Comment{}, apperr.Validation("comment text is required")
	}
	return s.posts.AddComment(ctx, models.Comment{
		ID:     ids.New(),
		PostID: postID,
		UserID: actor.UserID,
		Body:   body,
	})
}

func (s *PostService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.posts.Comments(ctx, postID)
}

// Delete lets authors remove their own posts and admins remove any post.
func (s *PostService) Delete(ctx context.Context, actor security.Principal, id string) error {
	ownerID := actor.UserID
	if actor.Role.IsAdmin() {
		ownerID = ""
	}

	post, err := s.posts.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}

	s.log.Info().Str("post_id", id).Str("actor_id", actor.UserID).Msg("post deleted")

	if post.Image != "" && s.tasks != nil {
		if err := s.tasks.Enqueue(ctx, queue.Task{Type: queue.TaskImageDelete, Image: post.Image}); err != nil {
			s.log.Warn().Err(err).Str("image", post.Image).Msg("enqueue image delete failed")
		}
	}
	return nil
}

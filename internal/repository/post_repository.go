package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

var (
	ErrPostNotFound = apperr.NotFound("post not found")
	ErrNotPostOwner = apperr.Forbidden("only the author or an admin can delete this post")
)

type PostRepository struct {
	db DB
}

func NewPostRepository(db DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post models.Post) (models.Post, error) {
	const query = `
		INSERT INTO posts (id, user_id, content, image_name, likes, created_at)
		VALUES ($1, $2, $3, $4, 0, NOW())
		RETURNING created_at
	`

	if err := r.db.QueryRow(ctx, query, post.ID, post.UserID, post.Content, post.Image).Scan(&post.CreatedAt); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) List(ctx context.Context) ([]models.Post, error) {
	const query = `
		SELECT p.id, p.user_id, u.name, p.content, p.image_name, p.likes,
			(SELECT COUNT(*) FROM post_supports s WHERE s.post_id = p.id) AS supports,
			p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var (
			post     models.Post
			supports int64
		)
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.AuthorName,
			&post.Content,
			&post.Image,
			&post.Likes,
			&supports,
			&post.CreatedAt,
		); err != nil {
			return nil, err
		}
		post.Supports = int(supports)
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Like(ctx context.Context, id string) (int, error) {
	const query = `
		UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING likes
	`

	var likes int
	if err := r.db.QueryRow(ctx, query, id).Scan(&likes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return likes, nil
}

// ToggleSupport removes the caller's support if present and adds it
// otherwise. It reports whether the post is supported afterwards.
func (r *PostRepository) ToggleSupport(ctx context.Context, postID, userID string) (bool, error) {
	var supported bool
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		const remove = `
			DELETE FROM post_supports WHERE post_id = $1 AND user_id = $2
		`
		cmd, err := tx.Exec(ctx, remove, postID, userID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() > 0 {
			supported = false
			return nil
		}

		const insert = `
			INSERT INTO post_supports (post_id, user_id, created_at) VALUES ($1, $2, NOW())
		`
		if _, err := tx.Exec(ctx, insert, postID, userID); err != nil {
			if isForeignKeyViolation(err) {
				return ErrPostNotFound
			}
			return err
		}
		supported = true
		return nil
	})
	return supported, err
}

func (r *PostRepository) AddComment(ctx context.Context, comment models.Comment) (models.Comment, error) {
	const query = `
		INSERT INTO post_comments (id, post_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, comment.ID, comment.PostID, comment.UserID, comment.Body).Scan(&comment.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Comment{}, ErrPostNotFound
		}
		return models.Comment{}, err
	}
	return comment, nil
}

func (r *PostRepository) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	const query = `
		SELECT c.id, c.post_id, c.user_id, u.name, c.body, c.created_at
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Delete removes a post together with its comments and supports in one
// transaction. A non-empty ownerID restricts the delete to that author.
// The deleted post is returned so its image can be cleaned up.
func (r *PostRepository) Delete(ctx context.Context, id string, ownerID string) (models.Post, error) {
	var post models.Post
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		const lock = `
			SELECT id, user_id, content, image_name FROM posts WHERE id = $1 FOR UPDATE
		`
		if err := tx.QueryRow(ctx, lock, id).Scan(&post.ID, &post.UserID, &post.Content, &post.Image); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPostNotFound
			}
			return err
		}
		if ownerID != "" && post.UserID != ownerID {
			return ErrNotPostOwner
		}

		steps := []struct {
			name  string
			query string
		}{
			{"comments", `DELETE FROM post_comments WHERE post_id = $1`},
			{"supports", `DELETE FROM post_supports WHERE post_id = $1`},
			{"post", `DELETE FROM posts WHERE id = $1`},
		}
		for _, step := range steps {
			if _, err := tx.Exec(ctx, step.query, id); err != nil {
				return fmt.Errorf("delete %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

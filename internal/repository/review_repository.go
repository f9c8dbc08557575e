package repository

import (
	"context"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

var ErrReviewNotFound = apperr.NotFound("review not found")

type ReviewRepository struct {
	db DB
}

func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review models.Review) (models.Review, error) {
	const query = `
		INSERT INTO reviews (id, user_id, service_name, rating, comment, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		review.ID,
		review.UserID,
		review.ServiceName,
		review.Rating,
		review.Comment,
	).Scan(&review.CreatedAt)
	if err != nil {
		return models.Review{}, err
	}
	review.Approved = false
	return review, nil
}

// ListApproved is the public feed. Unapproved reviews never leave the
// database through it.
func (r *ReviewRepository) ListApproved(ctx context.Context) ([]models.Review, error) {
	const query = `
		SELECT r.id, r.user_id, u.name, r.service_name, r.rating, r.comment, r.is_approved, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.is_approved = TRUE
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.AuthorName,
			&review.ServiceName,
			&review.Rating,
			&review.Comment,
			&review.Approved,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) Approve(ctx context.Context, id string) error {
	const query = `
		UPDATE reviews SET is_approved = TRUE WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	const query = `
		DELETE FROM reviews WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

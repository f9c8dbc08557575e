package repository

import (
	"context"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

var ErrAnnouncementNotFound = apperr.NotFound("announcement not found")

type AnnouncementRepository struct {
	db DB
}

func NewAnnouncementRepository(db DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	const query = `
		INSERT INTO announcements (id, title, message, priority, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	if err := r.db.QueryRow(ctx, query, a.ID, a.Title, a.Message, string(a.Priority)).Scan(&a.CreatedAt); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

func (r *AnnouncementRepository) ListRecent(ctx context.Context, limit int) ([]models.Announcement, error) {
	const query = `
		SELECT id, title, message, priority, created_at
		FROM announcements
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var (
			a        models.Announcement
			priority string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &priority, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Priority = models.Priority(priority)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	const query = `
		DELETE FROM announcements WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}

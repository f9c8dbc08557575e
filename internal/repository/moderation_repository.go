package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"cityconnect/internal/models"
)

// ModerationRepository reads the pending items of every content kind.
// It never writes.
type ModerationRepository struct {
	db DB
}

func NewModerationRepository(db DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

type pendingComplaintRow struct {
	ID          string    `db:"id"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	AuthorName  string    `db:"author_name"`
	CreatedAt   time.Time `db:"created_at"`
}

type pendingReviewRow struct {
	ID          string    `db:"id"`
	ServiceName string    `db:"service_name"`
	Rating      int       `db:"rating"`
	AuthorName  string    `db:"author_name"`
	CreatedAt   time.Time `db:"created_at"`
}

type pendingPostRow struct {
	ID         string    `db:"id"`
	Content    string    `db:"content"`
	AuthorName string    `db:"author_name"`
	CreatedAt  time.Time `db:"created_at"`
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *ModerationRepository) PendingComplaints(ctx context.Context) ([]models.ModerationItem, error) {
	builder := psql.
		Select("c.id", "c.description", "c.status", "u.name AS author_name", "c.created_at").
		From("complaints c").
		Join("users u ON u.id = c.user_id").
		Where(squirrel.NotEq{"c.status": string(models.ComplaintResolved)}).
		OrderBy("c.created_at DESC")

	var rows []pendingComplaintRow
	if err := r.selectInto(ctx, builder, &rows); err != nil {
		return nil, fmt.Errorf("pending complaints: %w", err)
	}

	items := make([]models.ModerationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.ModerationItem{
			Kind:       models.KindComplaint,
			ID:         row.ID,
			Title:      models.Title(row.Description),
			Status:     row.Status,
			AuthorName: row.AuthorName,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

func (r *ModerationRepository) PendingReviews(ctx context.Context) ([]models.ModerationItem, error) {
	builder := psql.
		Select("r.id", "r.service_name", "r.rating", "u.name AS author_name", "r.created_at").
		From("reviews r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.is_approved": false}).
		OrderBy("r.created_at DESC")

	var rows []pendingReviewRow
	if err := r.selectInto(ctx, builder, &rows); err != nil {
		return nil, fmt.Errorf("pending reviews: %w", err)
	}

	items := make([]models.ModerationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.ModerationItem{
			Kind:       models.KindReview,
			ID:         row.ID,
			Title:      models.ReviewTitle(row.ServiceName, row.Rating),
			Status:     "Pending",
			AuthorName: row.AuthorName,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

func (r *ModerationRepository) Posts(ctx context.Context) ([]models.ModerationItem, error) {
	builder := psql.
		Select("p.id", "p.content", "u.name AS author_name", "p.created_at").
		From("posts p").
		Join("users u ON u.id = p.user_id").
		OrderBy("p.created_at DESC")

	var rows []pendingPostRow
	if err := r.selectInto(ctx, builder, &rows); err != nil {
		return nil, fmt.Errorf("posts: %w", err)
	}

	items := make([]models.ModerationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.ModerationItem{
			Kind:       models.KindPost,
			ID:         row.ID,
			Title:      models.Title(row.Content),
			Status:     "Published",
			AuthorName: row.AuthorName,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

func (r *ModerationRepository) selectInto(ctx context.Context, builder squirrel.SelectBuilder, dst any) error {
	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}
	return pgxscan.Select(ctx, r.db, dst, sql, args...)
}

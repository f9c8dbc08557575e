package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

var ErrComplaintNotFound = apperr.NotFound("complaint not found")

type ComplaintRepository struct {
	db DB
}

func NewComplaintRepository(db DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

type complaintRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	AuthorName  string    `db:"author_name"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
	Location    string    `db:"location"`
	ImageName   string    `db:"image_name"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row complaintRow) toModel() models.Complaint {
	return models.Complaint{
		ID:          row.ID,
		UserID:      row.UserID,
		AuthorName:  row.AuthorName,
		Category:    row.Category,
		Description: row.Description,
		Location:    row.Location,
		Image:       row.ImageName,
		Status:      models.ComplaintStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func selectComplaints() squirrel.SelectBuilder {
	return squirrel.
		Select(
			"c.id", "c.user_id", "u.name AS author_name", "c.category", "c.description",
			"c.location", "c.image_name", "c.status", "c.created_at", "c.updated_at",
		).
		From("complaints c").
		Join("users u ON u.id = c.user_id").
		OrderBy("c.created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *ComplaintRepository) Create(ctx context.Context, complaint models.Complaint) (models.Complaint, error) {
	const query = `
		INSERT INTO complaints (id, user_id, category, description, location, image_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		complaint.ID,
		complaint.UserID,
		complaint.Category,
		complaint.Description,
		complaint.Location,
		complaint.Image,
		string(complaint.Status),
	).Scan(&complaint.CreatedAt, &complaint.UpdatedAt)
	if err != nil {
		return models.Complaint{}, err
	}
	return complaint, nil
}

func (r *ComplaintRepository) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	return r.list(ctx, selectComplaints().Where(squirrel.Eq{"c.user_id": userID}))
}

// ListAll returns every complaint, optionally narrowed to one status.
func (r *ComplaintRepository) ListAll(ctx context.Context, status *models.ComplaintStatus) ([]models.Complaint, error) {
	builder := selectComplaints()
	if status != nil {
		builder = builder.Where(squirrel.Eq{"c.status": string(*status)})
	}
	return r.list(ctx, builder)
}

func (r *ComplaintRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Complaint, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build complaint select: %w", err)
	}

	var rows []complaintRow
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}

	complaints := make([]models.Complaint, 0, len(rows))
	for _, row := range rows {
		complaints = append(complaints, row.toModel())
	}
	return complaints, nil
}

func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (models.Complaint, error) {
	const query = `
		UPDATE complaints SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, category, description, location, image_name, status, created_at, updated_at
	`

	var (
		c         models.Complaint
		rawStatus string
	)
	err := r.db.QueryRow(ctx, query, id, string(status)).Scan(
		&c.ID,
		&c.UserID,
		&c.Category,
		&c.Description,
		&c.Location,
		&c.Image,
		&rawStatus,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Complaint{}, ErrComplaintNotFound
		}
		return models.Complaint{}, err
	}
	c.Status = models.ComplaintStatus(rawStatus)
	return c, nil
}

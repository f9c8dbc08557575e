package repository

import (
	"context"
)

// ImageRepository answers which uploaded files are still referenced by
// content rows.
type ImageRepository struct {
	db DB
}

func NewImageRepository(db DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Referenced(ctx context.Context) (map[string]struct{}, error) {
	const query = `
		SELECT image_name FROM posts WHERE image_name <> ''
		UNION
		SELECT image_name FROM complaints WHERE image_name <> ''
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}

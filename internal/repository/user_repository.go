package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

var (
	ErrUserNotFound = apperr.NotFound("user not found")
	ErrEmailTaken   = apperr.Conflict("email is already registered")
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		string(user.PasswordHash),
		string(user.Role),
	).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE email = $1
	`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE id = $1
	`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) UpdateRole(ctx context.Context, email string, role models.Role) error {
	const query = `
		UPDATE users SET role = $2 WHERE email = $1
	`
	cmd, err := r.db.Exec(ctx, query, email, string(role))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user models.User
		hash string
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&hash,
		&role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	parsed, err := models.ParseRole(role)
	if err != nil {
		return models.User{}, err
	}
	user.Role = parsed
	user.PasswordHash = []byte(hash)
	return user, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

var ErrGroupNotFound = apperr.NotFound("group not found")

type GroupRepository struct {
	db DB
}

func NewGroupRepository(db DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create stores the group and enrolls its owner in the same transaction.
func (r *GroupRepository) Create(ctx context.Context, group models.Group) (models.Group, error) {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		const insertGroup = `
			INSERT INTO groups (id, name, description, owner_id, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING created_at
		`
		if err := tx.QueryRow(ctx, insertGroup, group.ID, group.Name, group.Description, group.OwnerID).Scan(&group.CreatedAt); err != nil {
			return fmt.Errorf("insert group: %w", err)
		}

		const insertOwner = `
			INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, NOW())
		`
		if _, err := tx.Exec(ctx, insertOwner, group.ID, group.OwnerID); err != nil {
			return fmt.Errorf("enroll owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}
	group.MemberCount = 1
	return group, nil
}

func (r *GroupRepository) Get(ctx context.Context, id string) (models.Group, error) {
	const query = `
		SELECT g.id, g.name, g.description, g.owner_id, u.name,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id),
			g.created_at
		FROM groups g
		JOIN users u ON u.id = g.owner_id
		WHERE g.id = $1
	`

	group, err := scanGroup(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return group, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	const query = `
		SELECT g.id, g.name, g.description, g.owner_id, u.name,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id),
			g.created_at
		FROM groups g
		JOIN users u ON u.id = g.owner_id
		ORDER BY g.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func scanGroup(row pgx.Row) (models.Group, error) {
	var (
		g       models.Group
		members int64
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.OwnerName, &members, &g.CreatedAt); err != nil {
		return models.Group{}, err
	}
	g.MemberCount = int(members)
	return g, nil
}

// AddMember reports false when the user already belonged to the group.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	const query = `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (group_id, user_id) DO NOTHING
	`

	cmd, err := r.db.Exec(ctx, query, groupID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrGroupNotFound
		}
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// Members are returned in join order.
func (r *GroupRepository) Members(ctx context.Context, groupID string) ([]models.Member, error) {
	const query = `
		SELECT m.user_id, u.name, m.joined_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.seq ASC
	`

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *GroupRepository) AppendMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	const query = `
		INSERT INTO group_messages (id, group_id, user_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, msg.ID, msg.GroupID, msg.UserID, msg.AuthorName, msg.Body).Scan(&msg.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Message{}, ErrGroupNotFound
		}
		return models.Message{}, err
	}
	return msg, nil
}

// Messages returns the whole log of a group, oldest first. Messages with
// the same timestamp keep their insertion order.
func (r *GroupRepository) Messages(ctx context.Context, groupID string) ([]models.Message, error) {
	const query = `
		SELECT id, group_id, user_id, author_name, body, created_at
		FROM group_messages
		WHERE group_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.AuthorName, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Delete removes the group with its messages and memberships.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM group_messages WHERE group_id = $1`, id); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1`, id); err != nil {
			return fmt.Errorf("delete members: %w", err)
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
}

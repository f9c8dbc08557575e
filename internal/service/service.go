package service

import (
	"context"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
	"cityconnect/internal/queue"
	"cityconnect/internal/security"
)

// TaskQueue hands work to the maintenance worker.
type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// MessagePublisher pushes stored chat messages to live listeners.
type MessagePublisher interface {
	Publish(ctx context.Context, msg models.Message) error
}

func requireAdmin(actor security.Principal) error {
	if !actor.Role.IsAdmin() {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

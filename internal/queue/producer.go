package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	TaskImageDelete  = "image.delete"
	TaskUploadsSweep = "uploads.sweep"
)

// Task is one unit of background maintenance.
type Task struct {
	Type  string
	Image string
}

func (t Task) values() map[string]any {
	values := map[string]any{"type": t.Type}
	if t.Image != "" {
		values["image"] = t.Image
	}
	return values
}

// TaskFromMessage decodes a stream entry written by Producer.
func TaskFromMessage(msg redis.XMessage) (Task, error) {
	taskType, _ := msg.Values["type"].(string)
	if taskType == "" {
		return Task{}, fmt.Errorf("message %s has no task type", msg.ID)
	}
	image, _ := msg.Values["image"].(string)
	return Task{Type: taskType, Image: image}, nil
}

type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) Enqueue(ctx context.Context, task Task) error {
	if p == nil || p.client == nil {
		return nil
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: task.values(),
	}).Result()
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type, err)
	}
	return nil
}

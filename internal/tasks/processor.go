package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"cityconnect/internal/queue"
	"cityconnect/internal/service"
	"cityconnect/internal/storage"
)

type ReferenceSource interface {
	Referenced(ctx context.Context) (map[string]struct{}, error)
}

// Processor runs maintenance tasks against the image store.
type Processor struct {
	images storage.ImageStore
	refs   ReferenceSource
	grace  time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewProcessor keeps unreferenced images younger than grace; they may
// belong to content that is still being created.
func NewProcessor(images storage.ImageStore, refs ReferenceSource, grace time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		images: images,
		refs:   refs,
		grace:  grace,
		now:    time.Now,
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	task, err := queue.TaskFromMessage(msg)
	if err != nil {
		// unreadable entries are acked and dropped
		p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("discarding malformed task")
		return nil
	}

	switch task.Type {
	case queue.TaskImageDelete:
		return p.deleteImage(ctx, task.Image)
	case queue.TaskUploadsSweep:
		return p.sweep(ctx)
	default:
		p.logger.Warn().Str("type", task.Type).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) deleteImage(ctx context.Context, name string) error {
	if !service.ValidImageName(name) {
		p.logger.Warn().Str("image", name).Msg("refusing to delete foreign file")
		return nil
	}
	if err := p.images.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrImageNotFound) {
		return fmt.Errorf("delete image %s: %w", name, err)
	}
	p.logger.Info().Str("image", name).Msg("image deleted")
	return nil
}

// sweep deletes stored images that no post or complaint references and
// that are older than the grace period.
func (p *Processor) sweep(ctx context.Context) error {
	stored, err := p.images.List(ctx)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	referenced, err := p.refs.Referenced(ctx)
	if err != nil {
		return fmt.Errorf("load image references: %w", err)
	}

	cutoff := p.now().Add(-p.grace)
	removed := 0
	for _, img := range stored {
		if !strings.HasPrefix(img.Name, service.ImagePrefix) {
			continue
		}
		if _, ok := referenced[img.Name]; ok {
			continue
		}
		if img.ModifiedAt.After(cutoff) {
			continue
		}
		if err := p.images.Delete(ctx, img.Name); err != nil {
			p.logger.Error().Err(err).Str("image", img.Name).Msg("sweep delete failed")
			continue
		}
		removed++
	}

	p.logger.Info().
		Int("stored", len(stored)).
		Int("referenced", len(referenced)).
		Int("removed", removed).
		Msg("upload sweep finished")
	return nil
}

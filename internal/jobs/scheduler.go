package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"cityconnect/internal/queue"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// Scheduler runs inside the API process and only enqueues; the worker
// does the actual maintenance.
type Scheduler struct {
	cron     *cron.Cron
	tasks    Enqueuer
	schedule string
	log      zerolog.Logger
}

// NewScheduler takes a six field cron spec (seconds first).
func NewScheduler(tasks Enqueuer, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		tasks:    tasks,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.tasks == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.enqueueSweep); err != nil {
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("upload sweep scheduled")
	return nil
}

// Stop waits for a running job at most until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.tasks.Enqueue(ctx, queue.Task{Type: queue.TaskUploadsSweep}); err != nil {
		s.log.Error().Err(err).Msg("enqueue upload sweep failed")
	}
}

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/queue"
)

func TestEnqueueSweepWritesToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	scheduler := NewScheduler(queue.NewProducer(client, "maintenance"), "0 30 3 * * *", zerolog.Nop())
	scheduler.enqueueSweep()

	entries, err := client.XRange(context.Background(), "maintenance", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	task, err := queue.TaskFromMessage(entries[0])
	require.NoError(t, err)
	assert.Equal(t, queue.TaskUploadsSweep, task.Type)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	scheduler := NewScheduler(queue.NewProducer(nil, "maintenance"), "every night", zerolog.Nop())
	assert.Error(t, scheduler.Start())
}

func TestStartAndStop(t *testing.T) {
	scheduler := NewScheduler(queue.NewProducer(nil, "maintenance"), "0 30 3 * * *", zerolog.Nop())
	require.NoError(t, scheduler.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	scheduler.Stop(ctx)
}

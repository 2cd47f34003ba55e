package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/notify"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
	gate chan struct{}
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestWorkerDeliversAndDrains(t *testing.T) {
	sender := &recordingSender{}
	w := NewNotificationWorker(sender, zap.NewNop(), 10)
	w.Start()

	for i := 0; i < 5; i++ {
		require.True(t, w.Enqueue(notify.Message{To: "a@example.com"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	assert.Equal(t, 5, sender.count())
}

func TestWorkerDropsWhenFull(t *testing.T) {
	sender := &recordingSender{gate: make(chan struct{})}
	w := NewNotificationWorker(sender, zap.NewNop(), 1)

	assert.True(t, w.Enqueue(notify.Message{To: "1@example.com"}))
	assert.False(t, w.Enqueue(notify.Message{To: "2@example.com"}))

	close(sender.gate)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	assert.Equal(t, 1, sender.count())
}

func TestWorkerSurvivesSendErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	w := NewNotificationWorker(sender, zap.NewNop(), 4)
	w.Start()

	w.Enqueue(notify.Message{To: "a@example.com"})
	w.Enqueue(notify.Message{To: "b@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	assert.Equal(t, 2, sender.count())
}

func TestStopHonoursContext(t *testing.T) {
	sender := &recordingSender{gate: make(chan struct{})}
	w := NewNotificationWorker(sender, zap.NewNop(), 2)
	w.Start()
	w.Enqueue(notify.Message{To: "a@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Stop(ctx), context.DeadlineExceeded)
	close(sender.gate)
}

func TestEnqueueAfterStopDrops(t *testing.T) {
	sender := &recordingSender{}
	w := NewNotificationWorker(sender, zap.NewNop(), 4)
	w.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.NotPanics(t, func() {
		assert.False(t, w.Enqueue(notify.Message{To: "late@example.com"}))
	})
	require.NoError(t, w.Stop(ctx))
	assert.Zero(t, sender.count())
}

func TestEnqueueRacesStop(t *testing.T) {
	sender := &recordingSender{}
	w := NewNotificationWorker(sender, zap.NewNop(), 64)
	w.Start()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if w.Enqueue(notify.Message{To: "a@example.com"}) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	wg.Wait()
	assert.Equal(t, accepted, sender.count())
}

package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePurger struct {
	mu    sync.Mutex
	calls []time.Time
	done  chan struct{}
}

func (p *fakePurger) PurgeBefore(_ context.Context, day time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, day)
	if len(p.calls) == 1 {
		close(p.done)
	}
	return 3, nil
}

func TestScheduler_PurgesOnStart(t *testing.T) {
	purger := &fakePurger{done: make(chan struct{})}
	s := NewScheduler(purger, 30, zap.NewNop())
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case <-purger.done:
	case <-time.After(time.Second):
		t.Fatal("purge was not called")
	}
	s.Stop()

	purger.mu.Lock()
	defer purger.mu.Unlock()
	assert.Equal(t, now.AddDate(0, 0, -30), purger.calls[0])
}

func TestScheduler_DisabledRetention(t *testing.T) {
	purger := &fakePurger{done: make(chan struct{})}
	s := NewScheduler(purger, 0, zap.NewNop())

	s.Start(context.Background())
	time.Sleep(10 * time.Millisecond)

	purger.mu.Lock()
	defer purger.mu.Unlock()
	assert.Empty(t, purger.calls)
}

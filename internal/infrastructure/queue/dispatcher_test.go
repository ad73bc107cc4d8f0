package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-system/internal/core/domain"
)

type recordingService struct {
	mu        sync.Mutex
	processed []domain.Activity
	failFor   domain.ActivityAction
	done      chan struct{}
}

func newRecordingService(expected int) *recordingService {
	s := &recordingService{done: make(chan struct{}, expected)}
	return s
}

func (s *recordingService) Process(_ context.Context, a domain.Activity) error {
	defer func() { s.done <- struct{}{} }()
	if a.Action == s.failFor {
		return errors.New("boom")
	}
	s.mu.Lock()
	s.processed = append(s.processed, a)
	s.mu.Unlock()
	return nil
}

func (s *recordingService) Recent(context.Context, int) ([]*domain.Activity, error) {
	return nil, nil
}

func (s *recordingService) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d entries, got %d", n, i)
		}
	}
}

func TestDispatcher_PreservesPerActorOrder(t *testing.T) {
	svc := newRecordingService(30)
	d := NewDispatcher(3, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	actions := []domain.ActivityAction{domain.ActionSignup, domain.ActionLogin, domain.ActionLogout}
	for i := 0; i < 10; i++ {
		for _, action := range actions {
			d.Publish(domain.Activity{ActorID: "user-1", Action: action})
		}
	}
	svc.wait(t, 30)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	for i, a := range svc.processed {
		if a.Action != actions[i%len(actions)] {
			t.Fatalf("entry %d: expected %s, got %s", i, actions[i%len(actions)], a.Action)
		}
	}
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	svc := newRecordingService(2)
	svc.failFor = domain.ActionLogin
	d := NewDispatcher(1, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Publish(domain.Activity{ActorID: "u", Action: domain.ActionLogin})
	d.Publish(domain.Activity{ActorID: "u", Action: domain.ActionLogout})
	svc.wait(t, 2)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.processed) != 1 || svc.processed[0].Action != domain.ActionLogout {
		t.Fatalf("expected only logout to be recorded, got %+v", svc.processed)
	}
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	svc := newRecordingService(channelBuffer + 10)
	d := NewDispatcher(1, svc, zerolog.Nop())

	finished := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Publish(domain.Activity{ActorID: "u", Action: domain.ActionLogin})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no running workers")
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected full channel of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, newRecordingService(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("user-42")
	for i := 0; i < 5; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard index changed: %d vs %d", first, got)
		}
	}
}

func TestDispatcher_StopDrainsQueuedEntries(t *testing.T) {
	const n = 50
	svc := newRecordingService(n)
	d := NewDispatcher(2, svc, zerolog.Nop())

	// Queue everything before the workers run so Stop has work to drain.
	for i := 0; i < n; i++ {
		d.Publish(domain.Activity{ActorID: "u", Action: domain.ActionLogin})
	}
	d.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	svc.mu.Lock()
	got := len(svc.processed)
	svc.mu.Unlock()
	if got != n {
		t.Fatalf("expected %d entries processed before Stop returned, got %d", n, got)
	}
}

func TestDispatcher_PublishAfterStopIsDropped(t *testing.T) {
	svc := newRecordingService(1)
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())

	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	d.Publish(domain.Activity{ActorID: "u", Action: domain.ActionLogin})

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.processed) != 0 {
		t.Fatalf("expected no processing after stop, got %d", len(svc.processed))
	}
}

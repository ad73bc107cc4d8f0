package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-system/internal/api/metrics"
	"github.com/stockroom/inventory-system/internal/core/domain"
	"github.com/stockroom/inventory-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes activity entries to a fixed set of workers using consistent
// hashing on the actor id, so entries of one user are processed in order.
type Dispatcher struct {
	workers []chan domain.Activity
	service ports.ActivityService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Activity, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Activity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Stop stops accepting entries and waits until the workers have processed
// everything already queued, or until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish hands an activity entry to the worker responsible for its actor.
// It never blocks the caller: when the worker channel is full, or the
// dispatcher is stopped, the entry is dropped and counted.
func (d *Dispatcher) Publish(activity domain.Activity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.shardIndex(activity.ActorID)
	if d.closed {
		metrics.ActivityErrorsTotal.WithLabelValues("stopped").Inc()
		d.log.Warn().
			Str("action", string(activity.Action)).
			Str("actor_id", activity.ActorID).
			Msg("dispatcher stopped, entry dropped")
		return
	}

	select {
	case d.workers[idx] <- activity:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("action", string(activity.Action)).
			Str("actor_id", activity.ActorID).
			Int("worker_id", idx).
			Msg("activity queue full, entry dropped")
	}
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *Dispatcher) shardIndex(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Activity) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case activity, ok := <-ch:
			if !ok {
				return
			}
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			start := time.Now()
			if err := d.service.Process(ctx, activity); err != nil {
				metrics.ActivityErrorsTotal.WithLabelValues("process_failed").Inc()
				d.log.Error().Err(err).
					Str("action", string(activity.Action)).
					Str("actor_id", activity.ActorID).
					Int("worker_id", id).
					Msg("activity processing failed")
				continue
			}
			metrics.ActivityProcessingDuration.Observe(time.Since(start).Seconds())
			metrics.ActivityProcessedTotal.WithLabelValues(string(activity.Action)).Inc()
		}
	}
}

package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/api/metrics"
	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
	defaultTimeout = 10 * time.Second
)

// Config sizes the dispatcher.
type Config struct {
	Workers int
	Buffer  int
	// Timeout bounds the delivery of a single event.
	Timeout time.Duration
}

// Dispatcher routes identity events to a fixed set of workers using
// consistent hashing on the identity, guaranteeing per-identity ordering.
// Emit never blocks: when a worker channel is full the event is dropped.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	service ports.EventService
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Zero config values fall back to defaults.
func NewDispatcher(cfg Config, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, cfg.Workers),
		service: service,
		timeout: cfg.Timeout,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, cfg.Buffer)
	}
	return d
}

var _ ports.EventEmitter = (*Dispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Shutdown has drained their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Emit sends an event to the worker responsible for its identity.
func (d *Dispatcher) Emit(event domain.AuthEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.EventsDroppedTotal.Inc()
		d.log.Warn().Str("type", string(event.Type)).Msg("dispatcher closed, event dropped")
		return
	}

	idx := d.shardIndex(event.ShardKey())
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsDroppedTotal.Inc()
		d.log.Warn().
			Str("type", string(event.Type)).
			Str("identity_id", event.IdentityID).
			Int("worker_id", idx).
			Msg("event queue full, event dropped")
	}
}

// Shutdown stops accepting events and waits for queued ones to be delivered
// or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a shard key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.AuthEvent) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	start := time.Now()
	err := d.service.Process(pctx, event)
	result := "ok"
	if err != nil {
		result = "error"
		d.log.Error().Err(err).
			Str("type", string(event.Type)).
			Str("identity_id", event.IdentityID).
			Int("worker_id", id).
			Msg("event processing failed")
	}
	metrics.EventProcessingDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// Package worker drains the record queue into the forecast repository.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/mq/queue"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/dedupe"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Recorder persists one forecast record.
type Recorder interface {
	RecordForecast(ctx context.Context, r queue.Record) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Record
}

// acker is implemented by queues that track consumption.
type acker interface {
	Ack()
}

// InMemoryWorker writes queued records through a Recorder.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	deduper  dedupe.Deduper
	name     string
	logger   logger.Logger

	stop chan struct{}
	done chan struct{}
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: recorder,
		name:     "worker",
		logger:   logger.Nop(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes records until the queue is drained and closed, Stop is
// called, or ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			if a, ok := w.queue.(acker); ok {
				a.Ack()
			}
			if err := w.process(ctx, rec); err != nil {
				w.logger.Error(ctx, "error recording forecast", logger.String("record_id", rec.ID), logger.Error(err))
			}
		}
	}
}

// Stop makes Run return without draining the queue.
func (w *InMemoryWorker) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

// Done is closed when Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, rec queue.Record) error { //nolint:gocritic // hugeParam: channel payload is a value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.recorder.RecordForecast(ctx, rec); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordForecastRecordError()
		metrics.RecordErrorByComponent("worker", "record_error")
		if w.deduper != nil {
			w.deduper.Unrecord(ctx, rec.Fingerprint)
		}
		return fmt.Errorf("record forecast %s: %w", rec.ID, err)
	}
	metrics.RecordForecastRecorded()
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	once    sync.Once
}

// NewPool creates workerCount workers sharing q and recorder. Worker options
// apply to every worker; names are assigned per worker.
func NewPool(workerCount int, q Queue, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	for i := range p.workers {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		p.workers[i] = NewInMemoryWorker(q, recorder, wopts...)
	}
	probe := &InMemoryWorker{logger: logger.Nop()}
	for _, opt := range opts {
		opt(probe)
	}
	p.logger = probe.logger.Named("worker-pool")
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop makes every worker return immediately.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.Stop()
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()

		for i, w := range p.workers {
			select {
			case <-w.Done():
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				p.Stop()
				err = fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
				return
			}
		}
		metrics.UpdateWorkerCount(0)
	})
	return err
}

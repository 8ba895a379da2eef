package resilience

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/fairyhunter13/car-rental-gateway/internal/observability"
)

// CompensationKind tags the deferred unit of work a retry task carries.
type CompensationKind string

const (
	// CompensationReleaseCar re-marks a car as available.
	CompensationReleaseCar CompensationKind = "release_car"
	// CompensationCancelPayment voids a payment.
	CompensationCancelPayment CompensationKind = "cancel_payment"
)

// Compensation is a tagged deferred action. Keeping it a value instead of a
// closure keeps tasks inspectable and leaves the door open for persisting
// the queue later.
type Compensation struct {
	Kind       CompensationKind `json:"kind"`
	CarUID     string           `json:"carUid,omitempty"`
	PaymentUID string           `json:"paymentUid,omitempty"`
}

// Executor runs a compensation against the upstreams. Implemented by the
// gateway's lifecycle service; the queue itself knows nothing about HTTP.
type Executor interface {
	Execute(ctx context.Context, c Compensation) error
}

type retryTask struct {
	id          string
	comp        Compensation
	attempts    int
	maxAttempts int
	createdAt   time.Time
	delay       backoff.BackOff
}

// TaskStatus is a point-in-time view of a pending task.
type TaskStatus struct {
	TaskID       string       `json:"taskId"`
	Compensation Compensation `json:"compensation"`
	Attempts     int          `json:"attempts"`
	MaxAttempts  int          `json:"maxAttempts"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// RetryQueue re-attempts failed compensations with bounded retries. It is a
// single-consumer worker fed through Submit; exhaustion is logged, never
// surfaced to the API caller. The queue is in-memory: tasks do not survive a
// restart.
type RetryQueue struct {
	mu    sync.Mutex
	tasks map[string]*retryTask

	ch          chan string
	interval    time.Duration
	maxAttempts int
	exec        Executor

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewRetryQueue constructs a stopped queue. interval is both the worker's
// idle wake-up period and the delay between attempts of one task.
func NewRetryQueue(exec Executor, interval time.Duration, maxAttempts int) *RetryQueue {
	return &RetryQueue{
		tasks:       make(map[string]*retryTask),
		ch:          make(chan string, 256),
		interval:    interval,
		maxAttempts: maxAttempts,
		exec:        exec,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Submit enqueues a compensation for background retry and returns its task id.
func (q *RetryQueue) Submit(c Compensation) string {
	id := uuid.New().String()
	t := &retryTask{
		id:          id,
		comp:        c,
		maxAttempts: q.maxAttempts,
		createdAt:   time.Now().UTC(),
		delay:       backoff.NewConstantBackOff(q.interval),
	}
	q.mu.Lock()
	q.tasks[id] = t
	depth := len(q.tasks)
	q.mu.Unlock()
	observability.RetryQueueDepth.Set(float64(depth))

	select {
	case q.ch <- id:
	default:
		// Channel full: the worker will still find the task on a later
		// re-enqueue; log loudly since this should not happen in practice.
		slog.Error("retry queue channel full, task delayed", slog.String("task_id", id))
		go func() { q.ch <- id }()
	}
	slog.Info("compensation queued",
		slog.String("task_id", id),
		slog.String("kind", string(c.Kind)))
	return id
}

// Start launches the worker goroutine. Stop halts it cooperatively.
func (q *RetryQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()
	go q.work(ctx)
}

// Stop signals the worker to exit and waits for it to drain its current task.
func (q *RetryQueue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.mu.Unlock()
	close(q.stop)
	<-q.done
}

// Size returns the number of pending tasks.
func (q *RetryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Snapshot returns the pending tasks for introspection.
func (q *RetryQueue) Snapshot() []TaskStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]TaskStatus, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, TaskStatus{
			TaskID:       t.id,
			Compensation: t.comp,
			Attempts:     t.attempts,
			MaxAttempts:  t.maxAttempts,
			CreatedAt:    t.createdAt,
		})
	}
	return out
}

func (q *RetryQueue) work(ctx context.Context) {
	defer close(q.done)
	slog.Info("retry queue worker started", slog.Duration("interval", q.interval))
	idle := time.NewTimer(q.interval)
	defer idle.Stop()
	for {
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(q.interval)
		select {
		case <-ctx.Done():
			slog.Info("retry queue worker stopping", slog.String("reason", "context canceled"))
			return
		case <-q.stop:
			slog.Info("retry queue worker stopping", slog.String("reason", "stop requested"))
			return
		case <-idle.C:
			continue
		case id := <-q.ch:
			q.runTask(ctx, id)
		}
	}
}

func (q *RetryQueue) runTask(ctx context.Context, id string) {
	q.mu.Lock()
	t, ok := q.tasks[id]
	q.mu.Unlock()
	if !ok {
		// Already evicted.
		return
	}

	err := q.exec.Execute(ctx, t.comp)
	if err == nil {
		q.remove(id)
		observability.RetryTasksTotal.WithLabelValues("succeeded").Inc()
		slog.Info("compensation succeeded",
			slog.String("task_id", id),
			slog.String("kind", string(t.comp.Kind)),
			slog.Int("attempts", t.attempts+1))
		return
	}

	q.mu.Lock()
	t.attempts++
	attempts := t.attempts
	q.mu.Unlock()
	slog.Warn("compensation attempt failed",
		slog.String("task_id", id),
		slog.String("kind", string(t.comp.Kind)),
		slog.Int("attempt", attempts),
		slog.Int("max_attempts", t.maxAttempts),
		slog.Any("error", err))

	if attempts >= t.maxAttempts {
		q.remove(id)
		observability.RetryTasksTotal.WithLabelValues("exhausted").Inc()
		slog.Error("compensation exhausted retries",
			slog.String("task_id", id),
			slog.String("kind", string(t.comp.Kind)))
		return
	}

	// Sleep the task's backoff interval before re-enqueueing, staying
	// responsive to shutdown.
	select {
	case <-ctx.Done():
	case <-q.stop:
	case <-time.After(t.delay.NextBackOff()):
		select {
		case q.ch <- id:
		default:
			go func() { q.ch <- id }()
		}
	}
}

func (q *RetryQueue) remove(id string) {
	q.mu.Lock()
	delete(q.tasks, id)
	depth := len(q.tasks)
	q.mu.Unlock()
	observability.RetryQueueDepth.Set(float64(depth))
}

// Package tasks runs remote operations off the UI loop and delivers their
// outcome back onto it.
//
// Every call to Run opens a progress indicator, executes the operation on a
// worker goroutine, closes the indicator exactly once and then either hands
// the result to the completion callback or files one error report. Workers
// never touch UI state; they post the outcome to the UI loop.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/logging"
	"github.com/rflorenc/distribution-workbench/internal/models"
	"github.com/rflorenc/distribution-workbench/internal/uiloop"
)

const defaultWorkers = 4

// Options configures a Coordinator.
type Options struct {
	// Workers bounds how many operations run at once. Extra runs wait for a
	// free slot with their progress indicator already open.
	Workers int
	Tasks   *models.TaskStore
	Metrics *Metrics
}

// Coordinator is the TaskCoordinator. Run must only be called on the UI
// loop it was created with.
type Coordinator struct {
	ctx      context.Context
	loop     *uiloop.Loop
	progress Progress
	reporter ErrorReporter
	slots    *semaphore.Weighted
	tasks    *models.TaskStore
	metrics  *Metrics

	// generations is owned by the UI loop.
	generations map[string]uint64

	mu      sync.Mutex
	idle    *sync.Cond
	workers int

	fallbackMu sync.Mutex
}

// NewCoordinator creates a coordinator. ctx bounds the lifetime of worker
// slots: once it is cancelled, operations still waiting for a slot fail.
func NewCoordinator(ctx context.Context, loop *uiloop.Loop, progress Progress, reporter ErrorReporter, opts Options) *Coordinator {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	store := opts.Tasks
	if store == nil {
		store = models.NewTaskStore(0)
	}
	c := &Coordinator{
		ctx:         ctx,
		loop:        loop,
		progress:    progress,
		reporter:    reporter,
		slots:       semaphore.NewWeighted(int64(workers)),
		tasks:       store,
		metrics:     opts.Metrics,
		generations: make(map[string]uint64),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// Tasks returns the store holding recent task records.
func (c *Coordinator) Tasks() *models.TaskStore {
	return c.tasks
}

// Wait blocks until every started run has finished on the UI loop, callbacks
// included. A run counts until its outcome has been applied, so runs started
// by a completion callback are waited for too. It must not be called on the
// UI loop.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.workers > 0 {
		c.idle.Wait()
	}
}

func (c *Coordinator) workerStarted() {
	c.mu.Lock()
	c.workers++
	c.mu.Unlock()
}

func (c *Coordinator) workerDone() {
	c.mu.Lock()
	c.workers--
	if c.workers == 0 {
		c.idle.Broadcast()
	}
	c.mu.Unlock()
}

type runOptions struct {
	kind      string
	supersede string
	onFailure func(error)
}

// RunOption adjusts a single Run call.
type RunOption func(*runOptions)

// WithKind labels the task for listing and metrics.
func WithKind(kind string) RunOption {
	return func(o *runOptions) { o.kind = kind }
}

// WithSupersede tags the run with the next generation of key. When the
// outcome arrives and a later run with the same key has been started, the
// outcome is dropped: the indicator still closes, but neither the callback
// nor the error report fires.
func WithSupersede(key string) RunOption {
	return func(o *runOptions) { o.supersede = key }
}

// OnFailure registers fn to run on the UI loop after a failure has been
// reported, so callers can unwind state they set up for the run.
func OnFailure(fn func(error)) RunOption {
	return func(o *runOptions) { o.onFailure = fn }
}

// Run executes op on a worker and calls done with its result on the UI loop.
// Failures, including panics inside op, become a single error report.
func Run[T any](c *Coordinator, title string, op func(ctx context.Context) (T, error), done func(T), opts ...RunOption) *models.Task {
	o := runOptions{kind: "task"}
	for _, opt := range opts {
		opt(&o)
	}

	var generation uint64
	if o.supersede != "" {
		c.generations[o.supersede]++
		generation = c.generations[o.supersede]
	}

	task := c.tasks.Create(title, o.kind, generation)
	c.metrics.taskStarted(o.kind)
	logging.Debug("Tasks", "started %q (%s, id=%s)", title, o.kind, task.ID)
	c.progress.Open(task.Snapshot())

	c.workerStarted()
	go func() {
		result, err := execute(c.ctx, c.slots, op)
		deliver := func() {
			defer c.workerDone()
			c.finish(task, o, generation, err, func() {
				if done != nil {
					done(result)
				}
			})
		}
		if c.loop.Post(deliver) {
			return
		}
		// The loop is gone. Wait for it to finish draining so the indicator
		// is closed without racing closures that still run on it, one worker
		// at a time.
		defer c.workerDone()
		<-c.loop.Done()
		logging.Warn("Tasks", "ui loop stopped before %q finished", title)
		c.fallbackMu.Lock()
		defer c.fallbackMu.Unlock()
		task.Fail(uiloop.ErrLoopStopped.Error(), nil)
		c.progress.Close(task.Snapshot())
		c.metrics.taskFinished(o.kind, time.Since(task.StartedAt).Seconds(), true, false)
	}()
	return task
}

func execute[T any](ctx context.Context, slots *semaphore.Weighted, op func(context.Context) (T, error)) (result T, err error) {
	if err := slots.Acquire(ctx, 1); err != nil {
		return result, faults.New(faults.InternalError, "no worker available", err)
	}
	defer slots.Release(1)
	defer func() {
		if r := recover(); r != nil {
			err = faults.New(faults.InternalError, "operation panicked", fmt.Errorf("%v", r))
		}
	}()
	return op(ctx)
}

// finish runs on the UI loop.
func (c *Coordinator) finish(task *models.Task, o runOptions, generation uint64, err error, deliver func()) {
	stale := o.supersede != "" && c.generations[o.supersede] != generation
	elapsed := time.Since(task.StartedAt).Seconds()

	switch {
	case stale:
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		task.Supersede(msg)
	case err != nil:
		task.Fail(err.Error(), faults.CauseChain(err))
	default:
		task.Complete()
	}
	c.metrics.taskFinished(o.kind, elapsed, err != nil, stale)
	c.progress.Close(task.Snapshot())

	switch {
	case stale:
		if err != nil {
			logging.Warn("Tasks", "dropping failure of superseded %q: %v", task.Title, err)
		} else {
			logging.Debug("Tasks", "dropping result of superseded %q (generation %d)", task.Title, generation)
		}
	case err != nil:
		logging.Error("Tasks", err, "%q failed", task.Title)
		c.reporter.Report(NewErrorReport(task.ID, task.Title, err))
		if o.onFailure != nil {
			o.onFailure(err)
		}
	default:
		logging.Debug("Tasks", "completed %q in %.3fs", task.Title, elapsed)
		deliver()
	}
}

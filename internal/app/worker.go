package app

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/vdesk/internal/domain"
	"github.com/bft-labs/vdesk/internal/ports"
	"github.com/bft-labs/vdesk/pkg/lifecycle"
	"github.com/bft-labs/vdesk/pkg/log"
)

// DefaultQueueCapacity is the number of units that may wait for the worker thread
// before Submit blocks.
const DefaultQueueCapacity = 10

// WorkerConfig tunes the worker thread.
type WorkerConfig struct {
	// QueueCapacity bounds the command queue. Values below 1 use DefaultQueueCapacity.
	QueueCapacity int

	// ElevatePriority raises the worker thread to the highest non-realtime
	// scheduling priority when it starts. Failure is logged and ignored.
	ElevatePriority bool
}

// thread is one incarnation of the worker thread. The queue (sender side) and
// the done channel (join handle) live and die together.
type thread[C ports.Resource] struct {
	id    uint64
	queue chan ports.Unit[C]
	done  chan struct{}

	// err is written by the thread before done is closed.
	err error
}

func (t *thread[C]) exited() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Worker owns at most one dedicated OS thread that holds the only live
// resource and executes submitted units one at a time, in submission order.
// The thread is created by the first Submit and torn down by Stop.
type Worker[C ports.Resource] struct {
	mu      sync.RWMutex
	current *thread[C]
	retired bool

	factory   ports.Factory[C]
	config    WorkerConfig
	logger    log.Logger
	lifecycle *lifecycle.DefaultManager

	generation atomic.Uint64
	// workerTID is the OS thread id of the live worker thread, 0 when unknown.
	workerTID atomic.Int64
}

// NewWorker creates a worker in the stopped state. No thread is started
// until the first Submit.
func NewWorker[C ports.Resource](factory ports.Factory[C], cfg WorkerConfig, logger log.Logger, emitter lifecycle.EventEmitter) *Worker[C] {
	if cfg.QueueCapacity < 1 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	logger = log.OrNoop(logger)
	return &Worker[C]{
		factory:   factory,
		config:    cfg,
		logger:    logger,
		lifecycle: lifecycle.NewManager(logger, emitter),
	}
}

// State returns the lifecycle state of the worker thread.
func (w *Worker[C]) State() lifecycle.State {
	return w.lifecycle.State()
}

// Generation returns how many worker threads have been started so far.
func (w *Worker[C]) Generation() uint64 {
	return w.generation.Load()
}

// Submit enqueues u for the worker thread, starting the thread first if none
// is alive. It blocks while the queue is full.
//
// The returned channel is closed when the thread that accepted u exits.
// Callers waiting for u's effects should watch it: a thread that exits
// abnormally never runs the units still queued behind the failure.
func (w *Worker[C]) Submit(u ports.Unit[C]) (<-chan struct{}, error) {
	if w.onWorkerThread() {
		return nil, domain.ErrReentrant
	}

	for started := false; ; started = true {
		w.mu.RLock()
		if t := w.current; t != nil && !t.exited() {
			err := t.enqueue(u)
			w.mu.RUnlock()
			if err != nil {
				return nil, err
			}
			return t.done, nil
		}
		w.mu.RUnlock()

		if started {
			// The thread we just started is already gone.
			return nil, fmt.Errorf("%w: worker thread exited during start", domain.ErrSender)
		}

		w.mu.Lock()
		if w.retired {
			w.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", domain.ErrSender, domain.ErrRetired)
		}
		if w.current == nil || w.current.exited() {
			w.startLocked()
		}
		w.mu.Unlock()
	}
}

func (t *thread[C]) enqueue(u ports.Unit[C]) error {
	select {
	case t.queue <- u:
		return nil
	case <-t.done:
		return domain.ErrSender
	}
}

// startLocked reaps a crashed thread, if any, and spawns a fresh one.
// Callers hold w.mu for writing.
func (w *Worker[C]) startLocked() {
	if old := w.current; old != nil {
		w.logger.Warn("restarting crashed worker thread",
			log.Uint64("thread", old.id),
			log.Err(old.err),
		)
	}

	t := &thread[C]{
		id:    w.generation.Add(1),
		queue: make(chan ports.Unit[C], w.config.QueueCapacity),
		done:  make(chan struct{}),
	}
	w.current = t

	w.transition(lifecycle.StateStarting, "first submission")
	go w.run(t)
	w.transition(lifecycle.StateRunning, "worker thread spawned")
}

// Stop closes the command queue, waits for the worker thread to drain it and
// exit, and clears the worker state. Stopping a stopped worker is a no-op.
// If the thread exited abnormally the error wraps domain.ErrWorkerCrashed.
func (w *Worker[C]) Stop() error {
	if w.onWorkerThread() {
		return domain.ErrReentrant
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	t := w.current
	if t == nil {
		return nil
	}
	w.current = nil

	w.transition(lifecycle.StateStopping, "Stop() called")

	// All sends happen under the read lock, so nobody is sending now.
	close(t.queue)
	<-t.done

	w.transition(lifecycle.StateStopped, "worker thread joined")
	if t.err != nil {
		return t.err
	}
	w.logger.Info("worker thread closed", log.Uint64("thread", t.id))
	return nil
}

// Retire stops the worker for good. Units already queued still run; later
// submissions fail with domain.ErrRetired instead of starting a new thread.
func (w *Worker[C]) Retire() error {
	w.mu.Lock()
	w.retired = true
	w.mu.Unlock()
	return w.Stop()
}

func (w *Worker[C]) transition(to lifecycle.State, reason string) {
	if w.lifecycle.State() == lifecycle.StateCrashed && to == lifecycle.StateStopped {
		_ = w.lifecycle.TransitionTo(lifecycle.StateStopping, reason)
	}
	if err := w.lifecycle.TransitionTo(to, reason); err != nil {
		w.logger.Debug("lifecycle transition skipped",
			log.String("to", to.String()),
			log.Err(err),
		)
	}
}

// run is the body of the dedicated thread.
func (w *Worker[C]) run(t *thread[C]) {
	// Never unlocked: the OS thread is discarded together with the goroutine.
	runtime.LockOSThread()

	logger := w.logger.With(log.Uint64("thread", t.id))
	tid := int64(currentThreadID())
	w.workerTID.Store(tid)

	clean := false
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("%w: %v", domain.ErrWorkerCrashed, r)
		} else if !clean {
			t.err = fmt.Errorf("%w: worker goroutine exited", domain.ErrWorkerCrashed)
		}
		w.workerTID.CompareAndSwap(tid, 0)
		if t.err != nil {
			logger.Error("worker thread crashed", log.Err(t.err))
			w.transition(lifecycle.StateCrashed, t.err.Error())
		}
		close(t.done)
	}()

	if w.config.ElevatePriority {
		if err := elevateThreadPriority(); err != nil {
			logger.Debug("thread priority unchanged", log.Err(err))
		} else {
			logger.Debug("thread priority elevated")
		}
	}

	ctx := w.factory()
	defer func() {
		if err := ctx.Close(); err != nil {
			logger.Warn("closing resource", log.Err(err))
		}
	}()
	logger.Info("worker thread started", log.String("resource", ctx.ID()))

	for u := range t.queue {
		w.execute(logger, ctx, u)
	}
	clean = true
}

// execute runs one unit. A panicking unit is isolated: the resource is reset
// and the thread keeps serving the queue.
func (w *Worker[C]) execute(logger log.Logger, ctx C, u ports.Unit[C]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("unit of work panicked",
				log.Any("panic", r),
				log.String("stack", string(debug.Stack())),
			)
			ctx.Reset()
		}
	}()
	u.Execute(ctx)
}

// onWorkerThread reports whether the caller runs on the live worker thread.
// It must not take w.mu: Stop holds it while the thread drains.
func (w *Worker[C]) onWorkerThread() bool {
	tid := int64(currentThreadID())
	return tid != 0 && tid == w.workerTID.Load()
}

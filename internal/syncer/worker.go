package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrWorkerRunning is returned when Start is called on a running
// worker.
var ErrWorkerRunning = errors.New("the sync worker is already running")

// Worker drives the reconciler: it runs a pass on a fixed interval
// and immediately after a nudge. Local mutations and the
// connectivity-restored path nudge it via Notify.
type Worker struct {
	reconciler *Reconciler
	interval   time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// notifyCh has capacity one: nudges that arrive while a pass is
	// pending collapse into it.
	notifyCh chan struct{}
}

func NewWorker(reconciler *Reconciler, interval time.Duration) *Worker {
	return &Worker{
		reconciler: reconciler,
		interval:   interval,
		notifyCh:   make(chan struct{}, 1),
	}
}

// Start launches the worker loop. It returns an error when the worker
// is already running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWorkerRunning
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	log.Debug().Dur("interval", w.interval).Msg("sync worker started")

	return nil
}

// Stop shuts the worker down and waits for the loop to exit or the
// context to run out.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		log.Debug().Msg("sync worker stopped")
	case <-ctx.Done():
		log.Warn().Msg("sync worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// Notify nudges the worker to reconcile soon. It never blocks; nudges
// arriving while one is already queued are dropped, the queued pass
// covers them.
func (w *Worker) Notify() {
	select {
	case w.notifyCh <- struct{}{}:
	default:
	}
}

// IsRunning reports whether the worker loop is active.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Reconcile once right away to catch records that went pending
	// while the worker was down
	w.reconciler.TryReconcile(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reconciler.TryReconcile(ctx)
		case <-w.notifyCh:
			w.reconciler.TryReconcile(ctx)
		}
	}
}

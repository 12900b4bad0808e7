// Package worker runs the appends requested through the service on a single
// goroutine so the chain keeps exactly one writer.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/google/uuid"
)

// Set of errors returned when submitting jobs.
var (
	ErrQueueFull = errors.New("append queue is full")
	ErrShutdown  = errors.New("worker is shut down")
)

// maxResults bounds the number of finished jobs kept for lookup.
const maxResults = 1000

// =============================================================================

// Job represents a request to append a block to the chain.
type Job struct {
	ID         string `json:"id"`
	Data       string `json:"data"`
	Difficulty uint   `json:"difficulty"`
}

// Result is the outcome of a job.
type Result struct {
	Job   Job
	Block database.Block
	Err   error
}

// Worker manages the append workflow for the ledger.
type Worker struct {
	db        *database.Database
	evHandler database.EventHandler
	wg        sync.WaitGroup
	shut      chan struct{}
	jobs      chan Job
	ctx       context.Context
	cancel    context.CancelFunc

	mu      sync.RWMutex
	results map[string]Result
	order   []string
}

// Run creates a worker and starts the goroutine that performs the appends.
func Run(db *database.Database, queueSize int, evHandler database.EventHandler) *Worker {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		db:        db,
		evHandler: evHandler,
		shut:      make(chan struct{}),
		jobs:      make(chan Job, queueSize),
		ctx:       ctx,
		cancel:    cancel,
		results:   make(map[string]Result),
	}

	w.wg.Add(1)
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.appendOperations()
	}()

	// We don't want to return until we know the G is up and running.
	<-hasStarted

	return &w
}

// Shutdown cancels any mining in progress and terminates the goroutine
// performing work. Queued jobs are dropped.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel mining")
	w.cancel()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// Submit queues a job to append a block and returns the job id. Submit
// does not block when the queue is full.
func (w *Worker) Submit(data string, difficulty uint) (Job, error) {
	if w.isShutdown() {
		return Job{}, ErrShutdown
	}

	job := Job{
		ID:         uuid.NewString(),
		Data:       data,
		Difficulty: difficulty,
	}

	select {
	case w.jobs <- job:
		w.evHandler("worker: Submit: job[%s]: queued", job.ID)
		return job, nil
	default:
		w.evHandler("worker: Submit: job[%s]: queue full", job.ID)
		return Job{}, ErrQueueFull
	}
}

// Result returns the outcome of a finished job.
func (w *Worker) Result(id string) (Result, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	r, exists := w.results[id]
	return r, exists
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// record keeps the result of a job, dropping the oldest past maxResults.
func (w *Worker) record(r Result) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.results[r.Job.ID] = r
	w.order = append(w.order, r.Job.ID)

	if len(w.order) > maxResults {
		delete(w.results, w.order[0])
		w.order = w.order[1:]
	}
}

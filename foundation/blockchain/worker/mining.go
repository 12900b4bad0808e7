package worker

import (
	"time"
)

// appendOperations handles the appends.
func (w *Worker) appendOperations() {
	w.evHandler("worker: appendOperations: G started")
	defer w.evHandler("worker: appendOperations: G completed")

	for {
		select {
		case job := <-w.jobs:
			if !w.isShutdown() {
				w.runAppendOperation(job)
			}
		case <-w.shut:
			w.evHandler("worker: appendOperations: received shut signal")
			return
		}
	}
}

// runAppendOperation builds the next block for the job and writes it to
// the chain.
func (w *Worker) runAppendOperation(job Job) {
	w.evHandler("worker: runAppendOperation: job[%s]: started", job.ID)
	defer w.evHandler("worker: runAppendOperation: job[%s]: completed", job.ID)

	t := time.Now()
	block, err := w.db.Append(w.ctx, job.Data, job.Difficulty)
	duration := time.Since(t)

	w.evHandler("worker: runAppendOperation: job[%s]: duration[%v]", job.ID, duration)

	switch {
	case err != nil && w.ctx.Err() != nil:
		w.evHandler("worker: runAppendOperation: job[%s]: CANCEL: complete", job.ID)
	case err != nil:
		w.evHandler("worker: runAppendOperation: job[%s]: ERROR: %s", job.ID, err)
	default:
		w.evHandler("worker: runAppendOperation: job[%s]: blk[%d]: hash[%s]", job.ID, block.Index, block.Hash)
	}

	w.record(Result{Job: job, Block: block, Err: err})
}

package bulk

import (
	"context"
	"log/slog"
	"sync"

	"github.com/star/frames/eop"
	"github.com/star/frames/frames"
)

// transportJob is a unit of work for the worker pool.
type transportJob struct {
	index int
	state frames.StateVector
}

// transportResult is the output of a single state transport.
type transportResult struct {
	index int
	state frames.StateVector
}

// WorkerPool manages a fixed number of goroutines for parallel state
// transport.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// TransportBatch re-expresses all states from origin to dest at one
// shared UTC Julian Date. The rotation chain is resolved once for the
// whole batch; workers then apply it in parallel. Output order matches
// input order. A resolution error fails the whole batch.
func (wp *WorkerPool) TransportBatch(ctx context.Context, origin, dest frames.Frame, jdUTC float64, states []frames.StateVector, data eop.Data) ([]frames.StateVector, error) {
	if len(states) == 0 {
		return nil, nil
	}

	// Resolve the chain once; it is shared by every state in the batch.
	tr, err := frames.NewTransporter(origin, dest, jdUTC, data)
	if err != nil {
		return nil, err
	}

	jobs := make(chan transportJob, wp.workers*2)
	results := make(chan transportResult, wp.workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result := transportResult{index: job.index, state: tr.Apply(job.state)}
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Feed jobs in a goroutine.
	go func() {
		defer close(jobs)
		for i, sv := range states {
			select {
			case jobs <- transportJob{index: i, state: sv}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]frames.StateVector, len(states))
	n := 0
	for result := range results {
		out[result.index] = result.state
		n++
	}

	if err := ctx.Err(); err != nil {
		wp.logger.Warn("batch transport cancelled",
			"completed", n,
			"total", len(states),
		)
		return nil, err
	}
	return out, nil
}

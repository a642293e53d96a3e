package execution

import (
	"context"
	"sync"
	"time"

	"irverify/internal/config"
	"irverify/internal/domain"
	"irverify/internal/ui"
	"irverify/internal/verify"
)

// WorkerPool manages a pool of workers for parallel test case execution
type WorkerPool struct {
	config    *config.Config
	runner    *Runner
	scheduler Scheduler
	report    *verify.Report
	progress  *ui.ProgressBar
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *Runner, scheduler Scheduler, report *verify.Report) *WorkerPool {
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
		report:    report,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Execute runs every case (no fail-fast) and records outcomes and failures in the report.
// Only a fatal runtime error stops the run early; it is returned after all workers have exited.
func (wp *WorkerPool) Execute(ctx context.Context, cases []domain.TestCase) (time.Duration, error) {
	if len(cases) == 0 {
		return 0, nil
	}
	startTime := time.Now()

	if err := wp.runner.Prepare(cases); err != nil {
		return 0, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount := wp.config.Processors
	if workerCount <= 0 {
		workerCount = 1
	}
	workerCount = min(workerCount, len(cases))

	var (
		mu                      sync.Mutex
		fatal                   error
		passed, failed, skipped int
	)

	var wg sync.WaitGroup
	for _, bucket := range wp.scheduler.Schedule(cases, workerCount) {
		wg.Add(1)
		go func(queue []domain.TestCase) {
			defer wg.Done()
			for _, tc := range queue {
				if runCtx.Err() != nil {
					return
				}
				result, err := wp.runner.Run(runCtx, tc)
				if err != nil {
					mu.Lock()
					if fatal == nil {
						fatal = err
					}
					mu.Unlock()
					cancel()
					return
				}

				wp.report.Record(result.Outcome)
				wp.report.Add(result.Failures...)

				mu.Lock()
				switch {
				case result.Outcome.Skipped:
					skipped++
				case result.Outcome.Passed:
					passed++
				default:
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(passed, failed, skipped)
				}
				mu.Unlock()
			}
		}(bucket)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	if fatal == nil {
		// Interrupted by the caller
		fatal = ctx.Err()
	}
	return time.Since(startTime), fatal
}

package pipeline

import (
	"context"
	"log/slog"
	"sync"
)

// Processor handles one page task. Satisfied by *Worker in production and by
// fakes in tests.
type Processor interface {
	Process(ctx context.Context, task PageTask) PageResult
}

// Pool runs page tasks across a bounded set of concurrent executors. Results
// arrive in completion order, which is deliberately unordered; everything
// order-sensitive happens later against the artifacts on disk.
type Pool struct {
	proc    Processor
	workers int
	log     *slog.Logger

	// OnResult, when set, is invoked from the collection loop for each
	// result as it arrives. Called from a single goroutine.
	OnResult func(PageResult)
}

func NewPool(proc Processor, workers int, log *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{proc: proc, workers: workers, log: log}
}

// Run dispatches tasks to the executors and collects their results. Context
// cancellation stops dispatch of new tasks; executors finish the page they
// hold so no artifact is left half-written. One task's failure never cancels
// its siblings.
func (p *Pool) Run(ctx context.Context, tasks []PageTask) []PageResult {
	taskCh := make(chan PageTask)
	resultCh := make(chan PageResult, len(tasks))

	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				resultCh <- p.proc.Process(ctx, task)
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			if ctx.Err() != nil {
				p.log.Info("dispatch stopped, draining in-flight pages")
				return
			}
			select {
			case taskCh <- task:
			case <-ctx.Done():
				p.log.Info("dispatch stopped, draining in-flight pages")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]PageResult, 0, len(tasks))
	for res := range resultCh {
		if p.OnResult != nil {
			p.OnResult(res)
		}
		results = append(results, res)
	}
	return results
}

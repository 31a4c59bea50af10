// Package worker provides a fixed-size pool for fanning extraction tasks out
// across documents. Each task owns its own text buffer and returns its own
// rows; there is no shared mutable state between tasks.
package worker

import (
	"context"
	"sync"

	"github.com/docsift/docsift/internal/resolver"
)

// Task is one unit of batch work: typically all configurations resolved
// against a single document, producing one row group.
type Task interface {
	Execute(ctx context.Context) []resolver.Result
}

// Pool runs tasks concurrently on a bounded number of workers.
type Pool struct {
	workers   int
	tasks     chan Task
	groups    chan []resolver.Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	tasksOnce sync.Once
	closeOnce sync.Once
}

// NewPool creates a pool with the given number of workers (minimum 1).
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, workers*2),
		groups:  make(chan []resolver.Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			group := task.Execute(p.ctx)
			select {
			case p.groups <- group:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a task. It blocks while the task buffer is full, so the
// submitter must run concurrently with the Wait drain when the batch exceeds
// the buffers. Submissions after cancellation are dropped.
func (p *Pool) Submit(task Task) {
	select {
	case <-p.ctx.Done():
	case p.tasks <- task:
	}
}

// Close marks submission complete. No Submit may follow. Wait does not return
// until Close has been called.
func (p *Pool) Close() {
	p.tasksOnce.Do(func() {
		close(p.tasks)
	})
}

// Wait drains produced rows until the workers finish the closed task queue,
// returning them flattened in arrival order. Callers re-group for
// presentation; arrival order carries no meaning. Wait consumes rows while
// tasks are still being submitted, so a batch larger than the channel buffers
// cannot wedge the pool.
func (p *Pool) Wait() []resolver.Result {
	go func() {
		p.wg.Wait()
		p.closeGroups()
	}()

	var rows []resolver.Result
	for group := range p.groups {
		rows = append(rows, group...)
	}
	return rows
}

// Shutdown cancels in-flight work and releases the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeGroups()
}

func (p *Pool) closeGroups() {
	p.closeOnce.Do(func() {
		close(p.groups)
	})
}

package dagflow

import "sync"

// Executor runs offloaded work for nodes that would otherwise block.
// The scheduler or the embedding application provides the instance; a
// bounded default is available via NewWorkerPool.
type Executor interface {
	// Submit schedules task for execution. It blocks when the
	// executor is saturated and is a no-op after Close.
	Submit(task func())
}

// WorkerPool is a fixed-size Executor backed by goroutines.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}
}

// NewWorkerPool creates a pool with size workers. Size values below
// one are treated as one.
func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	p := &WorkerPool{
		tasks:  make(chan func()),
		closed: make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.closed:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit implements Executor.
func (p *WorkerPool) Submit(task func()) {
	if task == nil {
		return
	}
	select {
	case <-p.closed:
	case p.tasks <- task:
	}
}

// Close stops the pool and waits for in-flight tasks to return.
// Submit calls made after Close are dropped.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	p.wg.Wait()
}

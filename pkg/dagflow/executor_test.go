package dagflow

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWorkerPool_RunsTasks verifies all submitted tasks execute.
func TestWorkerPool_RunsTasks(t *testing.T) {
	p := NewWorkerPool(4)

	var ran atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			ran.Add(1)
		})
	}
	wg.Wait()
	p.Close()

	assert.Equal(t, int64(32), ran.Load())
}

// TestWorkerPool_MinimumSize verifies non-positive sizes fall back to
// one worker.
func TestWorkerPool_MinimumSize(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Close()

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	<-done
}

// TestWorkerPool_CloseIdempotent verifies Close is safe to call twice
// and drops later submissions.
func TestWorkerPool_CloseIdempotent(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()
	p.Close()

	// Must not block or panic after close.
	p.Submit(func() { t.Error("task ran after close") })
}

// TestWorkerPool_NilTask verifies nil submissions are ignored.
func TestWorkerPool_NilTask(t *testing.T) {
	p := NewWorkerPool(1)
	defer p.Close()
	p.Submit(nil)
}

package crypto

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many key derivations run at once. scrypt is deliberately
// CPU and memory heavy, so callers beyond the limit wait for a slot instead
// of competing for every core.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool creates a pool with size slots, or one slot per CPU if size < 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}

	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Do waits for a free slot and runs fn in it. The context only governs the
// wait; fn is not interrupted once started.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	defer p.sem.Release(1)
	return fn()
}

func (p *Pool) Size() int {
	return p.size
}

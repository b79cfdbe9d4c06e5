package renderpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ajsmith595/videoedit/internal/errors"
)

// Pool is a LIFO stack of idle render workers, mirroring gst_process.rs's
// ProcessPool: a most-recently-released worker is handed out first, since a
// warm worker (already holding a GES-equivalent pipeline loaded) is cheaper
// to reuse than a cold one. acquire_process/add_process_to_pool there are a
// mutex-guarded Vec::pop/Vec::push; Go's slice append/truncate under a
// sync.Mutex is the direct equivalent.
type Pool struct {
	workerPath string
	workerArgs []string

	mu      sync.Mutex
	idle    []*Worker
	all     []*Worker
	closing bool
}

// New spawns n render workers concurrently and returns a Pool holding all of
// them idle. Concurrent startup is coordinated with errgroup: the first
// spawn failure is returned to the caller, and every worker that did start
// is killed rather than leaked. Workers are bound to ctx, so canceling it
// kills them.
func New(ctx context.Context, n int, workerPath string, workerArgs ...string) (*Pool, error) {
	p := &Pool{workerPath: workerPath, workerArgs: workerArgs}

	workers := make([]*Worker, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			w, err := StartWorker(ctx, workerPath, workerArgs...)
			if err != nil {
				return err
			}
			workers[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, w := range workers {
			if w != nil {
				_ = w.Kill()
			}
		}
		return nil, err
	}

	p.all = workers
	p.idle = append(p.idle, workers...)
	return p, nil
}

// Acquire pops the most recently released worker from the pool. It returns
// an error if the pool is empty or has begun shutting down; callers needing
// to block for availability should retry with their own backoff, mirroring
// the original's caller-side retry around acquire_process returning None.
func (p *Pool) Acquire() (*Worker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closing {
		return nil, errors.NewIOError("renderpool.Pool.Acquire", errPoolClosing)
	}
	if len(p.idle) == 0 {
		return nil, errors.NewIOError("renderpool.Pool.Acquire", errPoolEmpty)
	}

	last := len(p.idle) - 1
	w := p.idle[last]
	p.idle = p.idle[:last]
	return w, nil
}

// Release returns a worker to the top of the idle stack, making it the next
// one handed out by Acquire.
func (p *Pool) Release(w *Worker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = append(p.idle, w)
}

// Shutdown asks every worker to exit via EndProcess and waits for all of
// them to terminate, running the waits concurrently via errgroup.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	p.closing = true
	workers := p.all
	p.mu.Unlock()

	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			_ = w.Send(EndProcess{})
			return w.Wait()
		})
	}
	return g.Wait()
}

var (
	errPoolClosing = poolError("renderpool: pool is shutting down")
	errPoolEmpty   = poolError("renderpool: no idle workers available")
)

type poolError string

func (e poolError) Error() string { return string(e) }

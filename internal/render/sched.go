package render

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"gbmviz/internal/gbm"
	"gbmviz/internal/stats"
)

// Pool fans the per-step frame renders out across a fixed number of
// workers. Frames share the read-only matrix and scale state and write
// to distinct files, so no locking is needed; ordering is restored
// downstream by the sortable frame names.
type Pool struct {
	Workers int
	// OnFrame, if set, is called after each completed frame with the
	// number of frames done so far and the total.
	OnFrame func(done, total int)
}

// DefaultWorkers caps parallelism well below the machine's total:
// each in-flight frame holds full plotting state.
func DefaultWorkers() int {
	w := runtime.NumCPU() / 4
	if w < 1 {
		w = 1
	}
	return w
}

// Render writes one frame per step t in [0, horizon] into dir. Frames
// may complete in any order. The first failure aborts the run: pending
// work is skipped and the error for the smallest failing index is
// returned as a *FrameError. A single worker is a valid configuration
// and produces identical outputs.
func (p *Pool) Render(ctx context.Context, m gbm.Matrix, scale stats.Scale, opts Options, dir string) error {
	total := m.Steps() + 1

	workers := p.Workers
	if workers < 1 {
		workers = DefaultWorkers()
	}
	if workers > total {
		workers = total
	}

	jobs := make(chan int)
	errs := make([]error, total)
	var aborted atomic.Bool
	var done atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if aborted.Load() || ctx.Err() != nil {
					continue
				}
				path := filepath.Join(dir, FrameName(t, m.Steps()))
				if err := Frame(m, t, scale, opts, path); err != nil {
					errs[t] = err
					aborted.Store(true)
					continue
				}
				n := done.Add(1)
				if p.OnFrame != nil {
					p.OnFrame(int(n), total)
				}
			}
		}()
	}

	for t := 0; t < total; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for t, err := range errs {
		if err != nil {
			return &FrameError{T: t, Err: err}
		}
	}
	return nil
}

package fastastore

import "fmt"

// Pool holds one independent Handle per worker, indexed by worker id —
// a structural property fixed at construction time, per spec.md §9's
// design note ("make 'one handle per worker' a structural property...
// not an array the workers index into by ambient tid").
type Pool struct {
	handles []*Handle
}

// NewPool opens numWorkers independent handles onto fastaPath.
func NewPool(fastaPath string, numWorkers int) (*Pool, error) {
	handles := make([]*Handle, numWorkers)
	for i := 0; i < numWorkers; i++ {
		h, err := Open(fastaPath)
		if err != nil {
			for j := 0; j < i; j++ {
				handles[j].Close()
			}
			return nil, fmt.Errorf("fastastore.NewPool: worker %d: %w", i, err)
		}
		handles[i] = h
	}
	return &Pool{handles: handles}, nil
}

// Handle returns the handle owned by workerID. It must only ever be
// called from that worker's own goroutine.
func (p *Pool) Handle(workerID int) *Handle {
	return p.handles[workerID]
}

// Close releases every handle in the pool, continuing past individual
// close errors so every handle gets a chance to release its fd.
func (p *Pool) Close() error {
	var firstErr error
	for _, h := range p.handles {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

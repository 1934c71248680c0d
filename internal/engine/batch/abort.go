package batch

import "sync"

// abortRegistry tracks cancellation flags for running batches. Flags are
// dropped when a batch finishes; aborting an unknown batch is a no-op.
type abortRegistry struct {
	mu    sync.Mutex
	flags map[string]bool
}

func newAbortRegistry() *abortRegistry {
	return &abortRegistry{flags: make(map[string]bool)}
}

func (a *abortRegistry) register(batchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flags[batchID] = false
}

func (a *abortRegistry) abort(batchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.flags[batchID]; ok {
		a.flags[batchID] = true
	}
}

func (a *abortRegistry) aborted(batchID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flags[batchID]
}

func (a *abortRegistry) drop(batchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.flags, batchID)
}

package storage

import "sync"

// Holder is the process-wide current dataset. The engine reads through it
// on every request; a forced refresh swaps the whole value atomically so
// in-flight requests keep the dataset they started with.
type Holder struct {
	mu sync.RWMutex
	ds *Dataset
}

func NewHolder(ds *Dataset) *Holder {
	if ds == nil {
		ds = EmptyDataset()
	}
	return &Holder{ds: ds}
}

func (h *Holder) Get() *Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ds
}

func (h *Holder) Set(ds *Dataset) {
	if ds == nil {
		return
	}
	h.mu.Lock()
	h.ds = ds
	h.mu.Unlock()
}

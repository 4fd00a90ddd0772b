package index

import (
	"sync"
	"time"

	"github.com/netfab/bdscan/internal/discovery"
	"github.com/netfab/bdscan/internal/domain"
)

// MemoryIndex holds the current inventory in memory: consolidated
// instances keyed by signature plus the instances queued for review.
// It is the read path for the HTTP surface and the fallback when redis
// is unavailable.
type MemoryIndex struct {
	mu         sync.RWMutex
	instances  map[string]*domain.ServiceInstance // signature -> instance
	review     []*domain.ServiceInstance
	lastRun    *discovery.RunReport
	lastReload time.Time
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		instances: make(map[string]*domain.ServiceInstance),
	}
}

// UpdateInstances replaces all consolidated instances in the index.
func (idx *MemoryIndex) UpdateInstances(instances []*domain.ServiceInstance) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.instances = make(map[string]*domain.ServiceInstance, len(instances))
	for _, inst := range instances {
		if inst.Signature == "" {
			continue
		}
		idx.instances[inst.Signature] = inst
	}
	idx.lastReload = time.Now()
}

// GetInstance retrieves an instance by signature.
func (idx *MemoryIndex) GetInstance(signature string) (*domain.ServiceInstance, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	inst, ok := idx.instances[signature]
	return inst, ok
}

// GetAllInstances returns all consolidated instances.
func (idx *MemoryIndex) GetAllInstances() []*domain.ServiceInstance {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	instances := make([]*domain.ServiceInstance, 0, len(idx.instances))
	for _, inst := range idx.instances {
		instances = append(instances, inst)
	}
	return instances
}

// AddInstance adds or updates a single instance.
func (idx *MemoryIndex) AddInstance(inst *domain.ServiceInstance) {
	if inst.Signature == "" {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.instances[inst.Signature] = inst
}

// DeleteInstance removes an instance from the index.
func (idx *MemoryIndex) DeleteInstance(signature string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.instances, signature)
}

// Count returns the number of consolidated instances.
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.instances)
}

// UpdateReview replaces the review queue.
func (idx *MemoryIndex) UpdateReview(instances []*domain.ServiceInstance) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.review = instances
}

// GetReview returns the instances awaiting manual review.
func (idx *MemoryIndex) GetReview() []*domain.ServiceInstance {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.ServiceInstance, len(idx.review))
	copy(out, idx.review)
	return out
}

// SetLastRun records the report of the latest pipeline run.
func (idx *MemoryIndex) SetLastRun(report *discovery.RunReport) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lastRun = report
}

// LastRun returns the latest pipeline run report, or nil before the
// first run completes.
func (idx *MemoryIndex) LastRun() *discovery.RunReport {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastRun
}

// LastReload returns the timestamp of the last instance refresh.
func (idx *MemoryIndex) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

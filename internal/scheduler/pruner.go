package scheduler

import (
	"context"
	"time"

	"github.com/netfab/bdscan/internal/index"
	"github.com/netfab/bdscan/internal/logger"
	redisstore "github.com/netfab/bdscan/internal/store/redis"
)

// DefaultPruneAge is how long an instance may go unseen before pruning.
const DefaultPruneAge = 30 * 24 * time.Hour

// Pruner removes instances that have not been rediscovered for longer
// than the age threshold. A signature that stops appearing in snapshots
// usually means the service was decommissioned; keeping it around
// forever would let stale topology leak into future merges.
type Pruner struct {
	store    *redisstore.Store
	index    *index.MemoryIndex
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
}

// NewPruner creates a pruner.
func NewPruner(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *Pruner {
	if maxAge == 0 {
		maxAge = DefaultPruneAge
	}
	return &Pruner{
		store:    store,
		index:    idx,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic pruning.
func (p *Pruner) Start(ctx context.Context) error {
	if err := p.Prune(ctx); err != nil {
		p.logger.Warn("initial prune failed", logger.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := p.Prune(ctx); err != nil {
					p.logger.Error("prune failed", logger.Error(err))
				}
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner.
func (p *Pruner) Stop() {
	close(p.stopCh)
}

// Prune drops instances older than the age threshold from the index and
// the store.
func (p *Pruner) Prune(ctx context.Context) error {
	now := time.Now()
	pruned := 0

	for _, inst := range p.index.GetAllInstances() {
		if inst.DiscoveredAt.IsZero() {
			continue
		}
		age := now.Sub(inst.DiscoveredAt)
		if age < p.maxAge {
			continue
		}

		p.index.DeleteInstance(inst.Signature)
		if p.store != nil {
			if err := p.store.DeleteInstance(ctx, inst.Signature); err != nil {
				p.logger.Warn("failed to delete instance from redis",
					logger.String("signature", inst.Signature),
					logger.Error(err))
			}
		}

		p.logger.Info("pruned stale instance",
			logger.String("signature", inst.Signature),
			logger.Duration("age", age))
		pruned++
	}

	if pruned > 0 {
		p.logger.Info("prune completed", logger.Int("pruned", pruned))
	} else {
		p.logger.Debug("nothing to prune")
	}

	return nil
}

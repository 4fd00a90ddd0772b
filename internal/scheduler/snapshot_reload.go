package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netfab/bdscan/internal/discovery"
	"github.com/netfab/bdscan/internal/domain"
	"github.com/netfab/bdscan/internal/index"
	"github.com/netfab/bdscan/internal/logger"
	"github.com/netfab/bdscan/internal/metrics"
	"github.com/netfab/bdscan/internal/sources/snapshot"
	redisstore "github.com/netfab/bdscan/internal/store/redis"
)

// SnapshotReloader periodically re-ingests the scraped-config snapshot
// and runs the full classification/signature/consolidation pipeline over
// it, merging against previously stored instances. Two manual triggers
// exist: reload (re-ingest + run) and run (re-run consolidation over the
// last ingested inputs without touching the file).
type SnapshotReloader struct {
	loader  *snapshot.Loader
	mapper  *snapshot.Mapper
	runner  *discovery.Runner
	store   *redisstore.Store
	index   *index.MemoryIndex
	metrics *metrics.Metrics
	logger  logger.Logger

	interval      time.Duration
	stopCh        chan struct{}
	reloadTrigger chan struct{}
	runTrigger    chan struct{}

	mu         sync.Mutex
	lastInputs []discovery.ServiceInput
}

// NewSnapshotReloader wires the reloader.
func NewSnapshotReloader(
	snapshotFile string,
	runner *discovery.Runner,
	store *redisstore.Store,
	idx *index.MemoryIndex,
	mtr *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
	reloadTrigger, runTrigger chan struct{},
) *SnapshotReloader {
	return &SnapshotReloader{
		loader:        snapshot.NewLoader(snapshotFile),
		mapper:        snapshot.NewMapper(),
		runner:        runner,
		store:         store,
		index:         idx,
		metrics:       mtr,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		reloadTrigger: reloadTrigger,
		runTrigger:    runTrigger,
	}
}

// Start ingests once, then keeps re-ingesting on the interval and on
// manual triggers until stopped.
func (sr *SnapshotReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial snapshot ingest failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload snapshot", logger.Error(err))
				}
			case <-sr.reloadTrigger:
				sr.logger.Info("manual snapshot reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload snapshot", logger.Error(err))
				}
			case <-sr.runTrigger:
				sr.logger.Info("manual consolidation run triggered")
				if err := sr.Run(ctx); err != nil {
					sr.logger.Error("failed to run consolidation", logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (sr *SnapshotReloader) Stop() {
	close(sr.stopCh)
}

// Reload re-ingests the snapshot file and runs the pipeline.
func (sr *SnapshotReloader) Reload(ctx context.Context) error {
	sr.logger.Info("ingesting snapshot")

	snap, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	inputs, cache, err := sr.mapper.MapServices(snap)
	if err != nil {
		return fmt.Errorf("failed to map snapshot: %w", err)
	}

	sr.logger.Info("snapshot ingested",
		logger.Int("bridge_domains", len(inputs)),
		logger.Int("devices", len(cache)))

	sr.mu.Lock()
	sr.lastInputs = inputs
	sr.mu.Unlock()

	return sr.runPipeline(ctx, inputs)
}

// Run re-runs the pipeline over the last ingested inputs.
func (sr *SnapshotReloader) Run(ctx context.Context) error {
	sr.mu.Lock()
	inputs := sr.lastInputs
	sr.mu.Unlock()

	if inputs == nil {
		// Nothing ingested yet; fall back to a full reload.
		return sr.Reload(ctx)
	}
	return sr.runPipeline(ctx, inputs)
}

func (sr *SnapshotReloader) runPipeline(ctx context.Context, inputs []discovery.ServiceInput) error {
	prior := sr.loadPrior(ctx)

	report, err := sr.runner.Run(ctx, inputs, prior)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	consolidated := make([]*domain.ServiceInstance, 0, report.Result.ApprovedCount)
	var review []*domain.ServiceInstance
	for i := range report.Result.Groups {
		group := &report.Result.Groups[i]
		switch group.Outcome {
		case domain.Approved:
			consolidated = append(consolidated, group.Merged)
		case domain.Rejected, domain.NeedsReview:
			review = append(review, group.Members...)
		}
	}

	sr.index.UpdateInstances(consolidated)
	sr.index.UpdateReview(review)
	sr.index.SetLastRun(report)

	if sr.metrics != nil {
		sr.metrics.ObserveRun(report)
		sr.metrics.Instances.Set(float64(len(consolidated)))
	}

	// Redis is best effort; the memory index is the primary read path.
	if sr.store != nil {
		if err := sr.store.SaveInstancesMany(ctx, consolidated); err != nil {
			sr.logger.Warn("failed to save instances to redis", logger.Error(err))
		}
		if err := sr.store.SaveReview(ctx, review); err != nil {
			sr.logger.Warn("failed to save review queue to redis", logger.Error(err))
		}
		for i := range report.Result.Groups {
			group := &report.Result.Groups[i]
			if group.Signature == "" {
				continue
			}
			if err := sr.store.SaveGroup(ctx, group); err != nil {
				sr.logger.Warn("failed to save group to redis",
					logger.String("signature", group.Signature),
					logger.Error(err))
			}
		}
	}

	return nil
}

// loadPrior fetches previously stored instances so the run can merge
// across scans, not only within the current batch.
func (sr *SnapshotReloader) loadPrior(ctx context.Context) []*domain.ServiceInstance {
	if sr.store == nil {
		return nil
	}
	prior, err := sr.store.GetAllInstances(ctx)
	if err != nil {
		sr.logger.Warn("failed to load prior instances from redis, consolidating current batch only",
			logger.Error(err))
		return nil
	}
	return prior
}

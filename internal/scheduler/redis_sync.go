package scheduler

import (
	"context"

	"github.com/netfab/bdscan/internal/index"
	"github.com/netfab/bdscan/internal/logger"
	redisstore "github.com/netfab/bdscan/internal/store/redis"
)

// RedisSyncer loads previously stored instances into the memory index on
// startup, so the read path works before the first snapshot ingest.
type RedisSyncer struct {
	store  *redisstore.Store
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a syncer.
func NewRedisSyncer(store *redisstore.Store, idx *index.MemoryIndex, log logger.Logger) *RedisSyncer {
	return &RedisSyncer{store: store, index: idx, logger: log}
}

// Sync loads instances and the review queue from redis into memory.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing instances from redis to memory")

	instances, err := rs.store.GetAllInstances(ctx)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		rs.logger.Info("no instances found in redis")
		return nil
	}
	rs.index.UpdateInstances(instances)

	review, err := rs.store.GetReview(ctx)
	if err != nil {
		rs.logger.Warn("failed to load review queue from redis", logger.Error(err))
	} else {
		rs.index.UpdateReview(review)
	}

	rs.logger.Info("synced instances from redis",
		logger.Int("instances", len(instances)),
		logger.Int("review", len(review)))

	return nil
}

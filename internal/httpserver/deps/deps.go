package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netfab/bdscan/internal/index"
	"github.com/netfab/bdscan/internal/logger"
	"github.com/netfab/bdscan/internal/metrics"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	AllowedHosts  []string           // Host headers allowed to access the server
	AllowedCIDRS  []string           // IPs allowed to access operational endpoints
	TrustProxy    bool               // true if running behind a trusted reverse proxy
	SnapshotFile  string             // path to the scraped-config snapshot
	RedisClient   *redis.Client      // redis client connection
	MemoryIndex   *index.MemoryIndex // in-memory instance inventory
	Metrics       *metrics.Metrics   // pipeline metrics registry
	ReloadTrigger chan struct{}      // channel to trigger a snapshot reload
	RunTrigger    chan struct{}      // channel to trigger a pipeline re-run
}

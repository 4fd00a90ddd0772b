package discovery

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/netfab/bdscan/internal/domain"
	"github.com/netfab/bdscan/internal/logger"
)

// DefaultWorkers bounds the classification fan-out when no explicit
// worker count is configured.
const DefaultWorkers = 8

// ServiceInput is one raw service as assembled by ingestion: the
// admin-assigned name plus its scraped interface configs and topology.
type ServiceInput struct {
	Name       string
	Scope      domain.Scope
	Imposition string

	// Declared identity from the service definition, if the collector
	// supplied one. Authoritative over anything derived from analysis.
	VLANID    *int
	OuterVLAN *int
	InnerVLAN *int

	Interfaces []domain.InterfaceTagConfig
	Topology   domain.TopologyGraph
}

// RunReport summarizes one discovery+consolidation run.
type RunReport struct {
	Classified   int                        `json:"classified"`
	Signed       int                        `json:"signed"`
	Consolidated int                        `json:"consolidated"`
	Rejected     int                        `json:"rejected"`
	Review       int                        `json:"review"`
	Duration     time.Duration              `json:"duration"`
	StartedAt    time.Time                  `json:"started_at"`
	Result       domain.ConsolidationResult `json:"result"`
}

// Runner executes the discovery pipeline: classification and signature
// generation fan out per service (no shared mutable state between
// services), then grouping and merging run single-threaded because they
// need the global view of all signatures.
type Runner struct {
	log     logger.Logger
	workers int
}

// NewRunner creates a runner with the given worker bound.
func NewRunner(log logger.Logger, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{log: log, workers: workers}
}

// Discover classifies each input and builds its service instance.
// Instances whose signature generation fails keep an empty signature and
// end up in review groups downstream; the failure is logged, never
// papered over with a fabricated id.
func (r *Runner) Discover(ctx context.Context, inputs []ServiceInput) ([]*domain.ServiceInstance, error) {
	instances := make([]*domain.ServiceInstance, len(inputs))
	now := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range inputs {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			instances[i] = r.discoverOne(&inputs[i], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return instances, nil
}

// Run performs a full pipeline pass: discover every input, then
// consolidate the result together with previously stored instances.
func (r *Runner) Run(ctx context.Context, inputs []ServiceInput, prior []*domain.ServiceInstance) (*RunReport, error) {
	started := time.Now()

	instances, err := r.Discover(ctx, inputs)
	if err != nil {
		return nil, err
	}

	signed := 0
	for _, inst := range instances {
		if inst.Signature != "" {
			signed++
		}
	}

	all := make([]*domain.ServiceInstance, 0, len(instances)+len(prior))
	all = append(all, instances...)
	all = append(all, prior...)

	result := domain.Consolidate(all)

	report := &RunReport{
		Classified:   len(instances),
		Signed:       signed,
		Consolidated: result.ApprovedCount,
		Rejected:     result.RejectedCount,
		Review:       result.ReviewCount,
		Duration:     time.Since(started),
		StartedAt:    started,
		Result:       result,
	}

	r.log.Info("discovery run finished",
		logger.Int("classified", report.Classified),
		logger.Int("signed", report.Signed),
		logger.Int("consolidated", report.Consolidated),
		logger.Int("rejected", report.Rejected),
		logger.Int("review", report.Review),
		logger.Duration("duration", report.Duration))

	return report, nil
}

// discoverOne builds the instance for a single service. Pure except for
// logging; depends only on its own input.
func (r *Runner) discoverOne(in *ServiceInput, now time.Time) *domain.ServiceInstance {
	verdict := domain.Classify(in.Interfaces)

	inst := &domain.ServiceInstance{
		Name:         in.Name,
		Scope:        in.Scope,
		Type:         verdict.Type,
		Imposition:   in.Imposition,
		VLANID:       in.VLANID,
		OuterVLAN:    in.OuterVLAN,
		InnerVLAN:    in.InnerVLAN,
		Interfaces:   in.Interfaces,
		Topology:     in.Topology,
		Confidence:   float64(verdict.Confidence) / 100.0,
		DiscoveredAt: now,
	}

	if username, nameScope, err := domain.ExtractUsername(in.Name); err == nil {
		inst.Username = username
		if inst.Scope == domain.ScopeUnspecified {
			inst.Scope = nameScope
		}
	}

	fillVLANIdentity(inst, &verdict.Analysis)

	if verdict.Ambiguous {
		r.log.Warn("ambiguous classification",
			logger.String("service", in.Name),
			logger.String("type", verdict.Type.String()),
			logger.Int("confidence", verdict.Confidence),
			logger.String("reason", verdict.Reason))
	}

	sig, err := domain.GenerateSignature(inst)
	if err != nil {
		r.log.Warn("signature unresolvable, queuing for review",
			logger.String("service", in.Name),
			logger.String("type", verdict.Type.String()),
			logger.Error(err))
		return inst
	}
	inst.Signature = sig

	return inst
}

// fillVLANIdentity copies authoritative VLAN identity out of the
// analysis onto the instance. Only device-sourced configuration
// contributes; sub-interface numerals and display names never do.
func fillVLANIdentity(inst *domain.ServiceInstance, analysis *domain.ClassificationAnalysis) {
	if inst.Type.IsQinQ() {
		if inst.OuterVLAN != nil {
			return
		}
		if len(analysis.ValidPairs) > 0 {
			outer, inner := analysis.ValidPairs[0].Outer, analysis.ValidPairs[0].Inner
			inst.OuterVLAN = &outer
			inst.InnerVLAN = &inner
			return
		}
		// Switch-imposed QinQ without static pairs: the outer tag must
		// come from device-sourced single-VLAN configuration.
	}

	if !inst.Type.IsQinQ() && inst.VLANID != nil {
		return
	}

	for i := range inst.Interfaces {
		cfg := &inst.Interfaces[i]
		if cfg.FromDeviceConfig && cfg.VLANID != nil {
			v := *cfg.VLANID
			if inst.Type.IsQinQ() {
				inst.OuterVLAN = &v
			} else {
				inst.VLANID = &v
			}
			return
		}
	}
}

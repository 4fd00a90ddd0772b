package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/netfab/bdscan/internal/discovery"
)

const namespace = "bdscan"

// Metrics holds the prometheus instruments for pipeline runs. A private
// registry keeps the scrape surface to what this service exports.
type Metrics struct {
	registry *prometheus.Registry

	Classified   prometheus.Counter
	Signed       prometheus.Counter
	Consolidated prometheus.Counter
	Rejected     prometheus.Counter
	Review       prometheus.Counter

	RunDuration  prometheus.Gauge
	LastRunEpoch prometheus.Gauge
	Instances    prometheus.Gauge
}

// New creates and registers the pipeline metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry:     registry,
		Classified:   newCounter(registry, "classified_total", "Instances classified across all runs."),
		Signed:       newCounter(registry, "signed_total", "Instances with a generated signature across all runs."),
		Consolidated: newCounter(registry, "consolidated_total", "Approved consolidation groups across all runs."),
		Rejected:     newCounter(registry, "rejected_total", "Rejected consolidation groups across all runs."),
		Review:       newCounter(registry, "review_total", "Groups queued for manual review across all runs."),
		RunDuration:  newGauge(registry, "run_duration_seconds", "Duration of the latest pipeline run."),
		LastRunEpoch: newGauge(registry, "last_run_timestamp_seconds", "Unix time of the latest pipeline run."),
		Instances:    newGauge(registry, "instances", "Consolidated instances currently in the index."),
	}
	return m
}

// ObserveRun records one pipeline run report.
func (m *Metrics) ObserveRun(report *discovery.RunReport) {
	m.Classified.Add(float64(report.Classified))
	m.Signed.Add(float64(report.Signed))
	m.Consolidated.Add(float64(report.Consolidated))
	m.Rejected.Add(float64(report.Rejected))
	m.Review.Add(float64(report.Review))
	m.RunDuration.Set(report.Duration.Seconds())
	m.LastRunEpoch.Set(float64(report.StartedAt.Unix()))
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func newCounter(registry *prometheus.Registry, name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
	registry.MustRegister(c)
	return c
}

func newGauge(registry *prometheus.Registry, name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
	registry.MustRegister(g)
	return g
}

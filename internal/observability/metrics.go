package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/internal/logging"
)

// GeneratorCollector bundles Prometheus metrics for hypergraph generation,
// exponent searches and sweeps. It satisfies core.MetricsRecorder and
// search.MetricsRecorder.
type GeneratorCollector struct {
	gatherer prometheus.Gatherer

	GenerationDuration prometheus.Histogram
	CandidatesTested   prometheus.Counter
	ForbiddenSets      prometheus.Counter
	SupersetsPruned    prometheus.Counter
	Edges              prometheus.Gauge
	Stations           prometheus.Gauge
	InterferenceDegree prometheus.Gauge

	SearchIterations prometheus.Counter
	Searches         *prometheus.CounterVec
}

// NewGeneratorCollector registers metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewGeneratorCollector(reg prometheus.Registerer) (*GeneratorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hypergraph_generation_duration_seconds",
		Help:    "Time spent generating one interference hypergraph.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}), "hypergraph_generation_duration_seconds")
	if err != nil {
		return nil, err
	}
	candidates, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hypergraph_candidates_tested_total",
		Help: "Station subsets run through the forbidden-set predicate.",
	}), "hypergraph_candidates_tested_total")
	if err != nil {
		return nil, err
	}
	forbidden, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hypergraph_forbidden_sets_total",
		Help: "Minimal forbidden sets found across all generations.",
	}), "hypergraph_forbidden_sets_total")
	if err != nil {
		return nil, err
	}
	pruned, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hypergraph_supersets_pruned_total",
		Help: "Candidate supersets of forbidden sets removed before testing.",
	}), "hypergraph_supersets_pruned_total")
	if err != nil {
		return nil, err
	}
	edges, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hypergraph_edges",
		Help: "Edge count of the most recently generated hypergraph.",
	}), "hypergraph_edges")
	if err != nil {
		return nil, err
	}
	stations, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hypergraph_stations",
		Help: "Station count of the most recently generated hypergraph.",
	}), "hypergraph_stations")
	if err != nil {
		return nil, err
	}
	sigma, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hypergraph_interference_degree",
		Help: "Most recently computed interference degree sigma(H).",
	}), "hypergraph_interference_degree")
	if err != nil {
		return nil, err
	}
	iterations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_iterations_total",
		Help: "Bisection steps taken by exponent searches.",
	}), "search_iterations_total")
	if err != nil {
		return nil, err
	}
	searches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_runs_total",
		Help: "Finished exponent searches, labeled by result.",
	}, []string{"result"}), "search_runs_total")
	if err != nil {
		return nil, err
	}

	return &GeneratorCollector{
		gatherer:           gatherer,
		GenerationDuration: duration,
		CandidatesTested:   candidates,
		ForbiddenSets:      forbidden,
		SupersetsPruned:    pruned,
		Edges:              edges,
		Stations:           stations,
		InterferenceDegree: sigma,
		SearchIterations:   iterations,
		Searches:           searches,
	}, nil
}

// ObserveGeneration records one finished generation.
func (c *GeneratorCollector) ObserveGeneration(stats core.GenerationStats) {
	if c == nil {
		return
	}
	c.GenerationDuration.Observe(stats.Duration.Seconds())
	c.CandidatesTested.Add(float64(stats.Candidates))
	c.ForbiddenSets.Add(float64(stats.Forbidden))
	c.SupersetsPruned.Add(float64(stats.Pruned))
	c.Edges.Set(float64(stats.Forbidden))
	c.Stations.Set(float64(stats.Stations))
}

// ObserveSearch records one finished bisection.
func (c *GeneratorCollector) ObserveSearch(iterations int, converged bool) {
	if c == nil {
		return
	}
	c.SearchIterations.Add(float64(iterations))
	result := "converged"
	if !converged {
		result = "not_converged"
	}
	c.Searches.WithLabelValues(result).Inc()
}

// SetInterferenceDegree updates the sigma gauge.
func (c *GeneratorCollector) SetInterferenceDegree(sigma float64) {
	if c == nil {
		return
	}
	c.InterferenceDegree.Set(sigma)
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *GeneratorCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *GeneratorCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ServeMetrics starts an HTTP server exposing /metrics on addr in the
// background. It returns nil when addr is empty.
func ServeMetrics(addr string, collector *GeneratorCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	if log == nil {
		log = logging.Noop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

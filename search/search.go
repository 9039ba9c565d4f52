// Package search finds the smallest path-loss exponent at which a station
// layout has no forbidden set, by bisection over the hypergraph generator.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/internal/logging"
)

const tracerName = "github.com/signalsfoundry/interference-hypergraph/search"

var (
	ErrInvalidBounds    = errors.New("search bounds must satisfy 0 < low < high")
	ErrInvalidTolerance = errors.New("search tolerance must be positive")
	ErrNotConverged     = errors.New("search did not converge")
)

// Config bounds the bisection.
type Config struct {
	Low           float64
	High          float64
	Tolerance     float64
	MaxIterations int
	Threshold     float64
}

// DefaultConfig returns the bracket [1, 10] with a tolerance of 0.001.
func DefaultConfig() Config {
	return Config{
		Low:           1,
		High:          10,
		Tolerance:     0.001,
		MaxIterations: 64,
		Threshold:     core.DefaultThreshold,
	}
}

// ApplyDefaults fills zero fields from DefaultConfig.
func (c Config) ApplyDefaults() Config {
	d := DefaultConfig()
	if c.Low == 0 {
		c.Low = d.Low
	}
	if c.High == 0 {
		c.High = d.High
	}
	if c.Tolerance == 0 {
		c.Tolerance = d.Tolerance
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Threshold == 0 {
		c.Threshold = d.Threshold
	}
	return c
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if !(c.Low > 0) || !(c.Low < c.High) || math.IsInf(c.High, 0) {
		return fmt.Errorf("%w: low=%v high=%v", ErrInvalidBounds, c.Low, c.High)
	}
	if !(c.Tolerance > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, c.Tolerance)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidBounds, c.MaxIterations)
	}
	return core.Params{Exponent: c.Low, Threshold: c.Threshold}.Validate()
}

// Result is the outcome of a bisection. Low is the last exponent known to be
// infeasible and High the last known feasible one.
type Result struct {
	Exponent   float64
	Iterations int
	Low        float64
	High       float64
}

// MetricsRecorder receives one observation per finished search.
type MetricsRecorder interface {
	ObserveSearch(iterations int, converged bool)
}

// Option customises a Searcher.
type Option func(*Searcher)

// WithMetricsRecorder attaches a recorder for search iterations.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Searcher) { s.metrics = m }
}

// WithGeneratorOptions passes options to every Generator the search builds.
func WithGeneratorOptions(opts ...core.GeneratorOption) Option {
	return func(s *Searcher) { s.genOpts = append(s.genOpts, opts...) }
}

// Searcher runs feasibility checks and bisections with a fixed config.
type Searcher struct {
	cfg     Config
	log     logging.Logger
	metrics MetricsRecorder
	genOpts []core.GeneratorOption
}

// NewSearcher validates cfg after filling defaults.
func NewSearcher(cfg Config, log logging.Logger, opts ...Option) (*Searcher, error) {
	cfg = cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}
	s := &Searcher{cfg: cfg, log: log}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Searcher) Config() Config { return s.cfg }

// Feasible reports whether locations have no forbidden set at exponent.
func (s *Searcher) Feasible(ctx context.Context, locations []core.Point, exponent float64) (bool, error) {
	g, err := core.NewGenerator(core.Params{Exponent: exponent, Threshold: s.cfg.Threshold}, s.log, s.genOpts...)
	if err != nil {
		return false, err
	}
	h, err := g.Generate(ctx, locations)
	if err != nil {
		return false, err
	}
	return h.NumEdges() == 0, nil
}

// SmallestFeasibleExponent bisects [Low, High] until the midpoint moves by
// no more than Tolerance. The answer is only meaningful when the layout is
// infeasible at Low and feasible at High; neither end is probed.
func (s *Searcher) SmallestFeasibleExponent(ctx context.Context, locations []core.Point) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "search.bisect", trace.WithAttributes(
		attribute.Int("stations", len(locations)),
		attribute.Float64("low", s.cfg.Low),
		attribute.Float64("high", s.cfg.High),
		attribute.Float64("tolerance", s.cfg.Tolerance),
	))
	defer span.End()

	low, high := s.cfg.Low, s.cfg.High
	mid := (low + high) / 2
	res := Result{}
	for math.Abs(mid-low) > s.cfg.Tolerance {
		if res.Iterations >= s.cfg.MaxIterations {
			s.observe(res.Iterations, false)
			err := fmt.Errorf("%w after %d iterations: bracket [%v, %v]", ErrNotConverged, res.Iterations, low, high)
			span.RecordError(err)
			span.SetStatus(codes.Error, "not converged")
			return Result{Exponent: mid, Iterations: res.Iterations, Low: low, High: high}, err
		}
		ok, err := s.Feasible(ctx, locations, mid)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Result{}, err
		}
		res.Iterations++
		s.log.Debug(ctx, "bisection step",
			logging.Int("iteration", res.Iterations),
			logging.Float("exponent", mid),
			logging.Bool("feasible", ok),
		)
		if ok {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}

	res.Exponent, res.Low, res.High = mid, low, high
	span.SetAttributes(
		attribute.Float64("exponent", mid),
		attribute.Int("iterations", res.Iterations),
	)
	s.log.Info(ctx, "smallest feasible exponent found",
		logging.Int("stations", len(locations)),
		logging.Float("exponent", mid),
		logging.Int("iterations", res.Iterations),
	)
	s.observe(res.Iterations, true)
	return res, nil
}

func (s *Searcher) observe(iterations int, converged bool) {
	if s.metrics != nil {
		s.metrics.ObserveSearch(iterations, converged)
	}
}

// Feasible is Searcher.Feasible with a default, silent Searcher.
func Feasible(ctx context.Context, locations []core.Point, exponent, threshold float64) (bool, error) {
	s, err := NewSearcher(Config{Threshold: threshold}, nil)
	if err != nil {
		return false, err
	}
	return s.Feasible(ctx, locations, exponent)
}

// SmallestFeasibleExponent is Searcher.SmallestFeasibleExponent with a
// silent Searcher built from cfg.
func SmallestFeasibleExponent(ctx context.Context, locations []core.Point, cfg Config) (Result, error) {
	s, err := NewSearcher(cfg, nil)
	if err != nil {
		return Result{}, err
	}
	return s.SmallestFeasibleExponent(ctx, locations)
}

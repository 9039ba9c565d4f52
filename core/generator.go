package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/interference-hypergraph/internal/logging"
)

const tracerName = "github.com/signalsfoundry/interference-hypergraph/core"

// DefaultThreshold is the reception threshold used when none is given.
const DefaultThreshold = 1.0

var (
	ErrInvalidExponent    = errors.New("path-loss exponent must be positive and finite")
	ErrInvalidThreshold   = errors.New("reception threshold must be positive and finite")
	ErrCoincidentStations = errors.New("stations share a location")
)

// Params are the physical parameters of a wireless network <S, gamma, beta>.
type Params struct {
	Exponent  float64 // path-loss exponent gamma
	Threshold float64 // reception threshold beta
}

// Validate checks that both parameters are positive and finite.
func (p Params) Validate() error {
	if !(p.Exponent > 0) || math.IsInf(p.Exponent, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidExponent, p.Exponent)
	}
	if !(p.Threshold > 0) || math.IsInf(p.Threshold, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, p.Threshold)
	}
	return nil
}

// GenerationStats summarises one Generate call.
type GenerationStats struct {
	Stations   int
	Candidates int // subsets run through IsForbidden
	Forbidden  int // minimal forbidden sets found
	Pruned     int // candidate supersets removed before testing
	Duration   time.Duration
}

// MetricsRecorder receives a summary after every successful generation.
type MetricsRecorder interface {
	ObserveGeneration(stats GenerationStats)
}

// GeneratorOption customises Generator construction.
type GeneratorOption func(*Generator)

// WithMetricsRecorder attaches an optional recorder for generation stats.
func WithMetricsRecorder(m MetricsRecorder) GeneratorOption {
	return func(g *Generator) {
		g.metrics = m
	}
}

// Generator builds interference hypergraphs for fixed physical parameters.
type Generator struct {
	params  Params
	log     logging.Logger
	metrics MetricsRecorder
}

// NewGenerator validates params and returns a Generator.
func NewGenerator(params Params, log logging.Logger, opts ...GeneratorOption) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}
	g := &Generator{params: params, log: log}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Params returns the generator's physical parameters.
func (g *Generator) Params() Params { return g.params }

// Generate returns the hypergraph whose edges are exactly the minimal
// forbidden subsets of locations. Vertex i is locations[i-1].
//
// Levels are processed smallest first, so any forbidden set found at level
// k has no forbidden proper subset: those were all tested earlier, and any
// superset of an earlier edge was already pruned from level k.
func (g *Generator) Generate(ctx context.Context, locations []Point) (*Hypergraph, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if i, j, ok := Coincident(locations); ok {
		return nil, fmt.Errorf("%w: stations %d and %d at %v", ErrCoincidentStations, i+1, j+1, locations[i])
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "hypergraph.generate", trace.WithAttributes(
		attribute.Int("stations", len(locations)),
		attribute.Float64("exponent", g.params.Exponent),
		attribute.Float64("threshold", g.params.Threshold),
	))
	defer span.End()

	start := time.Now()
	n := len(locations)
	h, err := NewHypergraph(n, locations)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	vertices := vertexRange(n)
	for k := 2; k <= n; k++ {
		for c := range Combinations(vertices, k) {
			h.levels[k].add(Edge(c))
		}
	}

	stats := GenerationStats{Stations: n}
	for k := 2; k <= n; k++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")
			return nil, err
		}

		candidates := h.levels[k].edges
		confirmed := make([]Edge, 0)
		for _, w := range candidates {
			stats.Candidates++
			if IsForbidden(h.locationsOf(w), g.params.Exponent, g.params.Threshold) {
				confirmed = append(confirmed, w)
				stats.Pruned += h.RemoveSupersetsOf(w...)
			}
		}
		if err := h.SetLevelSet(k, confirmed); err != nil {
			span.RecordError(err)
			return nil, err
		}
		stats.Forbidden += len(confirmed)

		g.log.Debug(ctx, "level processed",
			logging.Int("size", k),
			logging.Int("tested", len(candidates)),
			logging.Int("edges", len(confirmed)),
		)
	}
	stats.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("edges", h.NumEdges()),
		attribute.Int("candidates", stats.Candidates),
	)
	g.log.Info(ctx, "hypergraph generated",
		logging.Int("stations", n),
		logging.Float("exponent", g.params.Exponent),
		logging.Float("threshold", g.params.Threshold),
		logging.Int("edges", h.NumEdges()),
		logging.Int("candidates", stats.Candidates),
		logging.Int("pruned", stats.Pruned),
		logging.Duration("duration", stats.Duration),
	)
	if g.metrics != nil {
		g.metrics.ObserveGeneration(stats)
	}
	return h, nil
}

// GenerateHypergraph is Generate with a throwaway, silent Generator.
func GenerateHypergraph(locations []Point, exponent, threshold float64) (*Hypergraph, error) {
	g, err := NewGenerator(Params{Exponent: exponent, Threshold: threshold}, nil)
	if err != nil {
		return nil, err
	}
	return g.Generate(context.Background(), locations)
}

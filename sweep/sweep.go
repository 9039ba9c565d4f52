// Package sweep regenerates the interference hypergraph while orbital
// stations move, sampling the edge count and interference degree per tick.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/internal/logging"
	"github.com/signalsfoundry/interference-hypergraph/kb"
	"github.com/signalsfoundry/interference-hypergraph/model"
	"github.com/signalsfoundry/interference-hypergraph/stations"
	"github.com/signalsfoundry/interference-hypergraph/timectrl"
)

const tracerName = "github.com/signalsfoundry/interference-hypergraph/sweep"

var ErrInvalidTick = errors.New("sweep tick must be positive")

// Sample is the hypergraph summary at one instant.
type Sample struct {
	Time  time.Time `json:"time" yaml:"time"`
	Edges int       `json:"edges" yaml:"edges"`
	Sigma float64   `json:"sigma" yaml:"sigma"`
}

// Option customises a Sweeper.
type Option func(*Sweeper)

// WithScaleKm sets how many kilometres make one plane unit when orbital
// positions are projected. The default is 1000.
func WithScaleKm(km float64) Option {
	return func(s *Sweeper) { s.scaleKm = km }
}

// Sweeper moves orbital stations in a store and regenerates the hypergraph
// after every move.
type Sweeper struct {
	store    *kb.StationStore
	orbitals []*stations.OrbitalStation
	gen      *core.Generator
	log      logging.Logger
	scaleKm  float64
}

// NewSweeper binds a store, its orbital stations and a generator. Every
// orbital station's ID must exist in the store.
func NewSweeper(store *kb.StationStore, orbitals []*stations.OrbitalStation, gen *core.Generator, log logging.Logger, opts ...Option) (*Sweeper, error) {
	if store == nil || gen == nil {
		return nil, errors.New("sweep: store and generator are required")
	}
	for _, o := range orbitals {
		if _, ok := store.GetStation(o.ID); !ok {
			return nil, fmt.Errorf("sweep: orbital station %d: %w", o.ID, kb.ErrStationNotFound)
		}
	}
	if log == nil {
		log = logging.Noop()
	}
	s := &Sweeper{
		store:    store,
		orbitals: orbitals,
		gen:      gen,
		log:      log,
		scaleKm:  1000,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Sample propagates orbital stations to t, writes their locations to the
// store and summarises the regenerated hypergraph.
func (s *Sweeper) Sample(ctx context.Context, t time.Time) (Sample, error) {
	for _, o := range s.orbitals {
		p := stations.ProjectKm(o.Position(t), s.scaleKm)
		if err := s.store.UpdateStationLocation(o.ID, model.Location{X: p.X, Y: p.Y}); err != nil {
			return Sample{}, err
		}
	}
	h, err := s.gen.Generate(ctx, s.store.Locations())
	if err != nil {
		return Sample{}, fmt.Errorf("sweep at %s: %w", t.Format(time.RFC3339), err)
	}
	return Sample{Time: t, Edges: h.NumEdges(), Sigma: h.InterferenceDegree()}, nil
}

// Run samples at start and then every tick until duration has elapsed. A
// non-positive duration yields only the start sample.
// Simulation time runs accelerated.
func (s *Sweeper) Run(ctx context.Context, start time.Time, tick, duration time.Duration) ([]Sample, error) {
	if tick <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTick, tick)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "sweep.run", trace.WithAttributes(
		attribute.Int("stations", s.store.Len()),
		attribute.Int("orbital_stations", len(s.orbitals)),
		attribute.String("tick", tick.String()),
		attribute.String("duration", duration.String()),
	))
	defer span.End()

	first, err := s.Sample(ctx, start)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	samples := []Sample{first}
	if duration <= 0 {
		return samples, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sampleErr error
	tc := timectrl.NewTimeController(start, tick, timectrl.Accelerated)
	tc.AddListener(func(now time.Time) {
		sample, err := s.Sample(ctx, now)
		if err != nil {
			sampleErr = err
			cancel()
			return
		}
		s.log.Debug(ctx, "sweep sample",
			logging.String("time", now.Format(time.RFC3339)),
			logging.Int("edges", sample.Edges),
			logging.Float("sigma", sample.Sigma),
		)
		samples = append(samples, sample)
	})

	if err := tc.Run(ctx, duration); err != nil {
		if sampleErr != nil {
			err = sampleErr
		}
		span.RecordError(err)
		return samples, err
	}
	if sampleErr != nil {
		span.RecordError(sampleErr)
		return samples, sampleErr
	}

	span.SetAttributes(attribute.Int("samples", len(samples)))
	s.log.Info(ctx, "sweep finished",
		logging.Int("samples", len(samples)),
		logging.Float("max_sigma", MaxSigma(samples)),
	)
	return samples, nil
}

// MaxSigma returns the largest interference degree among samples.
func MaxSigma(samples []Sample) float64 {
	m := 0.0
	for _, s := range samples {
		m = max(m, s.Sigma)
	}
	return m
}

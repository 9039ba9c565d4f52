package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/signalsfoundry/interference-hypergraph/internal/logging"
)

// unitCircle places n stations uniformly on the unit circle, the first at (1,0).
func unitCircle(n int) []Point {
	out := make([]Point, n)
	for i := range out {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out[i] = Point{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	return out
}

// centredPentagon is a station at the origin plus a regular pentagon on the
// unit circle.
func centredPentagon() []Point {
	return append([]Point{{X: 0, Y: 0}}, unitCircle(5)...)
}

type recordingMetrics struct {
	calls []GenerationStats
}

func (r *recordingMetrics) ObserveGeneration(s GenerationStats) {
	r.calls = append(r.calls, s)
}

func mustGenerate(t *testing.T, locs []Point, exponent float64) *Hypergraph {
	t.Helper()
	h, err := GenerateHypergraph(locs, exponent, DefaultThreshold)
	if err != nil {
		t.Fatalf("GenerateHypergraph: %v", err)
	}
	return h
}

func TestGenerateFivePointsOnCircleInfeasibleAtThree(t *testing.T) {
	h := mustGenerate(t, unitCircle(5), 3)
	if h.NumEdges() < 1 {
		t.Fatalf("expected U5 at gamma=3 to have a forbidden set")
	}
	// Three consecutive pentagon vertices: the middle one receives
	// 2/(2 sin 36°)^3 ≈ 1.23, while no pair reaches the threshold.
	if got := len(h.LevelSet(2)); got != 0 {
		t.Fatalf("level 2 = %v, want empty", h.LevelSet(2))
	}
	want := []Edge{{1, 2, 3}, {1, 2, 5}, {1, 4, 5}, {2, 3, 4}, {3, 4, 5}}
	if got := h.LevelSet(3); !reflect.DeepEqual(got, want) {
		t.Fatalf("level 3 = %v, want %v", got, want)
	}
	if h.NumEdges() != 5 {
		t.Fatalf("NumEdges = %d, want 5", h.NumEdges())
	}
}

func TestGenerateThreePointsOnCircle(t *testing.T) {
	tests := []struct {
		exponent  float64
		wantEdges int
	}{
		{exponent: 1.3, wantEdges: 0},
		{exponent: 1.2, wantEdges: 1},
	}
	for _, tc := range tests {
		h := mustGenerate(t, unitCircle(3), tc.exponent)
		if h.NumEdges() != tc.wantEdges {
			t.Fatalf("gamma=%v: NumEdges = %d, want %d (edges %v)", tc.exponent, h.NumEdges(), tc.wantEdges, h.Edges())
		}
	}
	h := mustGenerate(t, unitCircle(3), 1.2)
	if !h.HasEdge(1, 2, 3) {
		t.Fatalf("expected the full triple to be the only edge, got %v", h.Edges())
	}
}

func TestGenerateCentredPentagon(t *testing.T) {
	h := mustGenerate(t, centredPentagon(), 3)

	pairs := []Edge{{1, 2}, {1, 3}, {1, 4}, {1, 5}, {1, 6}}
	if got := h.LevelSet(2); !reflect.DeepEqual(got, pairs) {
		t.Fatalf("level 2 = %v, want %v", got, pairs)
	}
	triples := []Edge{{2, 3, 4}, {2, 3, 6}, {2, 5, 6}, {3, 4, 5}, {4, 5, 6}}
	if got := h.LevelSet(3); !reflect.DeepEqual(got, triples) {
		t.Fatalf("level 3 = %v, want %v", got, triples)
	}
	for k := 4; k <= 6; k++ {
		if got := h.LevelSet(k); len(got) != 0 {
			t.Fatalf("level %d = %v, want empty", k, got)
		}
	}
}

func TestGenerateBoundaries(t *testing.T) {
	for _, locs := range [][]Point{nil, {{X: 3, Y: 4}}} {
		h := mustGenerate(t, locs, 2)
		if h.NumEdges() != 0 {
			t.Fatalf("N=%d: NumEdges = %d, want 0", len(locs), h.NumEdges())
		}
		for k := 0; k <= len(locs); k++ {
			if len(h.LevelSet(k)) != 0 {
				t.Fatalf("N=%d: level %d not empty", len(locs), k)
			}
		}
		if sigma := h.InterferenceDegree(); sigma != 0 {
			t.Fatalf("N=%d: sigma = %v, want 0", len(locs), sigma)
		}
	}
}

func TestGenerateMinimalAndSound(t *testing.T) {
	for _, gamma := range []float64{1.5, 2, 3, 4.5} {
		for _, locs := range [][]Point{unitCircle(4), unitCircle(6), centredPentagon()} {
			h := mustGenerate(t, locs, gamma)
			assertMinimal(t, h)
			assertSound(t, h, gamma, DefaultThreshold)
		}
	}
}

func TestGenerateMonotoneInExponentOnCircle(t *testing.T) {
	// Every pairwise distance is at least 1, so raising the exponent can only
	// lower interference: each edge at a higher exponent must contain an
	// edge found at a lower one.
	for _, n := range []int{5, 6} {
		gammas := []float64{1, 2, 3, 4, 5, 6}
		for i := 1; i < len(gammas); i++ {
			low := mustGenerate(t, unitCircle(n), gammas[i-1])
			high := mustGenerate(t, unitCircle(n), gammas[i])
			for _, e := range high.Edges() {
				if !containsEdgeOf(low, e) {
					t.Fatalf("U%d: edge %v at gamma=%v has no sub-edge at gamma=%v", n, e, gammas[i], gammas[i-1])
				}
			}
		}
	}
}

func containsEdgeOf(h *Hypergraph, set Edge) bool {
	for _, e := range h.Edges() {
		if e.IsSubsetOf(set) {
			return true
		}
	}
	return false
}

func TestGenerateRejectsBadInput(t *testing.T) {
	if _, err := GenerateHypergraph(unitCircle(3), 0, 1); !errors.Is(err, ErrInvalidExponent) {
		t.Fatalf("expected ErrInvalidExponent, got %v", err)
	}
	if _, err := GenerateHypergraph(unitCircle(3), 2, -1); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
	if _, err := GenerateHypergraph(unitCircle(3), math.NaN(), 1); !errors.Is(err, ErrInvalidExponent) {
		t.Fatalf("expected ErrInvalidExponent for NaN, got %v", err)
	}
	locs := []Point{{X: 1}, {X: 2}, {X: 1}}
	if _, err := GenerateHypergraph(locs, 2, 1); !errors.Is(err, ErrCoincidentStations) {
		t.Fatalf("expected ErrCoincidentStations, got %v", err)
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	g, err := NewGenerator(Params{Exponent: 2, Threshold: 1}, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx, unitCircle(4)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateRecordsMetrics(t *testing.T) {
	rec := &recordingMetrics{}
	g, err := NewGenerator(Params{Exponent: 3, Threshold: 1}, nil, WithMetricsRecorder(rec))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	h, err := g.Generate(context.Background(), centredPentagon())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("ObserveGeneration called %d times, want 1", len(rec.calls))
	}
	stats := rec.calls[0]
	if stats.Stations != 6 || stats.Forbidden != h.NumEdges() {
		t.Fatalf("unexpected stats %+v for %d edges", stats, h.NumEdges())
	}
	// All 15 pairs are tested; every candidate that was neither tested nor
	// kept was pruned.
	if stats.Candidates < 15 || stats.Pruned == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if total := (1 << 6) - 1 - 6; stats.Candidates+stats.Pruned != total {
		t.Fatalf("candidates+pruned = %d, want %d", stats.Candidates+stats.Pruned, total)
	}
}

func assertMinimal(t *testing.T, h *Hypergraph) {
	t.Helper()
	edges := h.Edges()
	for i, a := range edges {
		for j, b := range edges {
			if i != j && a.IsSubsetOf(b) {
				t.Fatalf("edge %v is contained in edge %v", a, b)
			}
		}
	}
}

func assertSound(t *testing.T, h *Hypergraph, exponent, threshold float64) {
	t.Helper()
	for _, e := range h.Edges() {
		if !IsForbidden(h.locationsOf(e), exponent, threshold) {
			t.Fatalf("edge %v is not forbidden", e)
		}
		for sub := range Combinations(e, len(e)-1) {
			if IsForbidden(h.locationsOf(sub), exponent, threshold) {
				t.Fatalf("edge %v has forbidden subset %v", e, sub)
			}
		}
	}
}

func TestGenerateDebugLogKeepsSeverity(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})
	g, err := NewGenerator(Params{Exponent: 3, Threshold: DefaultThreshold}, log)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if _, err := g.Generate(context.Background(), unitCircle(5)); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var levels int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["msg"] != "level processed" {
			continue
		}
		levels++
		if entry["level"] != "DEBUG" {
			t.Fatalf("level processed logged with level %v", entry["level"])
		}
		if _, ok := entry["size"]; !ok {
			t.Fatalf("level processed missing size: %v", entry)
		}
	}
	if levels == 0 {
		t.Fatal("no per-level debug lines logged")
	}
}

package core

import (
	"errors"
	"reflect"
	"testing"
)

func newTestHypergraph(t *testing.T, n int) *Hypergraph {
	t.Helper()
	locs := make([]Point, n)
	for i := range locs {
		locs[i] = Point{X: float64(i)}
	}
	h, err := NewHypergraph(n, locs)
	if err != nil {
		t.Fatalf("NewHypergraph: %v", err)
	}
	return h
}

func TestNewHypergraphValidatesLocations(t *testing.T) {
	if _, err := NewHypergraph(3, []Point{{X: 1}}); !errors.Is(err, ErrLocationsMismatch) {
		t.Fatalf("expected ErrLocationsMismatch, got %v", err)
	}
	h := newTestHypergraph(t, 4)
	if h.NumVertices() != 4 || h.NumEdges() != 0 {
		t.Fatalf("new hypergraph: vertices=%d edges=%d", h.NumVertices(), h.NumEdges())
	}
	for k := 0; k <= 4; k++ {
		if got := h.LevelSet(k); len(got) != 0 {
			t.Fatalf("level %d not empty: %v", k, got)
		}
	}
	loc, err := h.Location(3)
	if err != nil || loc != (Point{X: 2}) {
		t.Fatalf("Location(3) = %+v, %v", loc, err)
	}
	if _, err := h.Location(5); !errors.Is(err, ErrVertexOutOfRange) {
		t.Fatalf("Location(5) error = %v", err)
	}
}

func TestAddEdgeNormalizesAndDeduplicates(t *testing.T) {
	h := newTestHypergraph(t, 4)
	if err := h.AddEdge(3, 1); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := h.AddEdge(1, 3); err != nil {
		t.Fatalf("AddEdge duplicate: %v", err)
	}
	got := h.LevelSet(2)
	if !reflect.DeepEqual(got, []Edge{{1, 3}}) {
		t.Fatalf("LevelSet(2) = %v, want [(1, 3)]", got)
	}
	if !h.HasEdge(3, 1) {
		t.Fatalf("HasEdge(3, 1) = false")
	}
}

func TestAddEdgeRejectsMalformed(t *testing.T) {
	h := newTestHypergraph(t, 3)

	if err := h.AddEdge(1, 4); !errors.Is(err, ErrVertexOutOfRange) {
		t.Fatalf("expected ErrVertexOutOfRange, got %v", err)
	}
	if err := h.AddEdge(0, 2); !errors.Is(err, ErrVertexOutOfRange) {
		t.Fatalf("expected ErrVertexOutOfRange for vertex 0, got %v", err)
	}
	if err := h.AddEdge(2, 2); !errors.Is(err, ErrDuplicateVertex) {
		t.Fatalf("expected ErrDuplicateVertex, got %v", err)
	}
	if err := h.AddEdge(); !errors.Is(err, ErrEmptyEdge) {
		t.Fatalf("expected ErrEmptyEdge, got %v", err)
	}
	if h.NumEdges() != 0 {
		t.Fatalf("malformed edges modified the hypergraph: %v", h.Edges())
	}
}

func TestAddEdgesContinuesPastErrors(t *testing.T) {
	h := newTestHypergraph(t, 3)
	err := h.AddEdges([]int{1, 2}, []int{1, 9}, []int{2, 3})
	if !errors.Is(err, ErrVertexOutOfRange) {
		t.Fatalf("expected joined ErrVertexOutOfRange, got %v", err)
	}
	if h.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2", h.NumEdges())
	}
}

func TestRemoveEdge(t *testing.T) {
	h := newTestHypergraph(t, 3)
	_ = h.AddEdges([]int{1, 2}, []int{2, 3})
	h.RemoveEdge(2, 1)
	h.RemoveEdge(1, 3) // absent
	h.RemoveEdge(7)    // malformed
	if got := h.Edges(); !reflect.DeepEqual(got, []Edge{{2, 3}}) {
		t.Fatalf("Edges = %v, want [(2, 3)]", got)
	}
}

func TestRemoveSupersetsOf(t *testing.T) {
	h := newTestHypergraph(t, 4)
	_ = h.AddEdges(
		[]int{1, 2},
		[]int{1, 2, 3},
		[]int{1, 3, 4},
		[]int{2, 3, 4},
		[]int{1, 2, 3, 4},
	)

	removed := h.RemoveSupersetsOf(2, 1)
	if removed != 2 {
		t.Fatalf("RemoveSupersetsOf removed %d, want 2", removed)
	}
	want := []Edge{{1, 2}, {1, 3, 4}, {2, 3, 4}}
	if got := h.Edges(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Edges = %v, want %v", got, want)
	}

	if again := h.RemoveSupersetsOf(1, 2); again != 0 {
		t.Fatalf("second RemoveSupersetsOf removed %d, want 0", again)
	}
	if got := h.Edges(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pruning is not idempotent: %v", got)
	}
}

func TestSetLevelSetValidatesCardinality(t *testing.T) {
	h := newTestHypergraph(t, 3)
	if err := h.SetLevelSet(2, []Edge{{1, 2, 3}}); !errors.Is(err, ErrLevelOutOfRange) {
		t.Fatalf("expected ErrLevelOutOfRange, got %v", err)
	}
	if err := h.SetLevelSet(5, nil); !errors.Is(err, ErrLevelOutOfRange) {
		t.Fatalf("expected ErrLevelOutOfRange for level 5, got %v", err)
	}
	if err := h.SetLevelSet(2, []Edge{{2, 1}, {1, 2}}); err != nil {
		t.Fatalf("SetLevelSet: %v", err)
	}
	if got := h.LevelSet(2); !reflect.DeepEqual(got, []Edge{{1, 2}}) {
		t.Fatalf("LevelSet(2) = %v", got)
	}
}

func TestLevelSetReturnsCopy(t *testing.T) {
	h := newTestHypergraph(t, 3)
	_ = h.AddEdge(1, 2)
	got := h.LevelSet(2)
	got[0][0] = 3
	if !h.HasEdge(1, 2) {
		t.Fatalf("mutating LevelSet result changed the hypergraph")
	}
}

func TestIsIndependentSet(t *testing.T) {
	h := newTestHypergraph(t, 5)
	_ = h.AddEdges([]int{1, 2}, []int{3, 4, 5})

	tests := []struct {
		set  []int
		want bool
	}{
		{nil, true},
		{[]int{1}, true},
		{[]int{2, 1}, false},
		{[]int{1, 3, 4}, true},
		{[]int{5, 4, 3}, false},
		{[]int{1, 3, 4, 5}, false},
		{[]int{2, 3, 5}, true},
	}
	for _, tc := range tests {
		if got := h.IsIndependentSet(tc.set); got != tc.want {
			t.Errorf("IsIndependentSet(%v) = %v, want %v", tc.set, got, tc.want)
		}
	}
}

func TestAdjacencyList(t *testing.T) {
	h := newTestHypergraph(t, 5)
	_ = h.AddEdges([]int{1, 2}, []int{1, 2, 3})

	adj := h.AdjacencyList()
	want := map[int][]int{
		1: {2, 3},
		2: {1, 3},
		3: {1, 2},
		4: {},
		5: {},
	}
	if !reflect.DeepEqual(adj, want) {
		t.Fatalf("AdjacencyList = %v, want %v", adj, want)
	}
}

func TestInterferenceWeights(t *testing.T) {
	h := newTestHypergraph(t, 4)
	_ = h.AddEdges([]int{1, 2}, []int{1, 3, 4}, []int{2, 3, 4})

	delta := h.InterferenceWeights()
	checks := []struct {
		i, j int
		want float64
	}{
		{1, 2, 1},
		{1, 3, 0.5},
		{3, 4, 0.5},
		{2, 4, 0.5},
		{1, 1, 0},
	}
	for _, c := range checks {
		if got := delta[c.i-1][c.j-1]; got != c.want {
			t.Errorf("Δ(%d,%d) = %v, want %v", c.i, c.j, got, c.want)
		}
		if delta[c.i-1][c.j-1] != delta[c.j-1][c.i-1] {
			t.Errorf("Δ not symmetric at (%d,%d)", c.i, c.j)
		}
	}
}

func TestEdgeHelpers(t *testing.T) {
	e := NewEdge(4, 1, 3)
	if e.String() != "(1, 3, 4)" {
		t.Fatalf("String = %q", e.String())
	}
	if !e.Contains(3) || e.Contains(2) {
		t.Fatalf("Contains mismatch for %v", e)
	}
	if !NewEdge(1, 4).IsSubsetOf(e) || NewEdge(1, 2).IsSubsetOf(e) {
		t.Fatalf("IsSubsetOf mismatch for %v", e)
	}
}

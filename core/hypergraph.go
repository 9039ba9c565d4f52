package core

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrVertexOutOfRange  = errors.New("vertex out of range")
	ErrDuplicateVertex   = errors.New("edge repeats a vertex")
	ErrEmptyEdge         = errors.New("empty edge")
	ErrLevelOutOfRange   = errors.New("level out of range")
	ErrLocationsMismatch = errors.New("location count does not match vertex count")
)

// Edge is a hyperedge: a sorted tuple of distinct vertex IDs.
type Edge []int

// NewEdge returns the sorted copy of vertices.
func NewEdge(vertices ...int) Edge {
	e := make(Edge, len(vertices))
	copy(e, vertices)
	slices.Sort(e)
	return e
}

// Key is a canonical string form of the edge, used for deduplication.
func (e Edge) Key() string {
	var b strings.Builder
	for i, v := range e {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// String renders the edge as a tuple, e.g. (1, 2, 4).
func (e Edge) String() string {
	return "(" + strings.ReplaceAll(e.Key(), ",", ", ") + ")"
}

// Contains reports whether v is a member of e.
func (e Edge) Contains(v int) bool {
	_, found := slices.BinarySearch(e, v)
	return found
}

// IsSubsetOf reports whether every vertex of e is in other. Both edges must
// be sorted.
func (e Edge) IsSubsetOf(other Edge) bool {
	if len(e) > len(other) {
		return false
	}
	j := 0
	for _, v := range e {
		for j < len(other) && other[j] < v {
			j++
		}
		if j == len(other) || other[j] != v {
			return false
		}
		j++
	}
	return true
}

// levelSet holds the edges of one cardinality in insertion order.
type levelSet struct {
	edges []Edge
	keys  map[string]struct{}
}

func newLevelSet() *levelSet {
	return &levelSet{keys: make(map[string]struct{})}
}

func (ls *levelSet) add(e Edge) bool {
	k := e.Key()
	if _, exists := ls.keys[k]; exists {
		return false
	}
	ls.keys[k] = struct{}{}
	ls.edges = append(ls.edges, e)
	return true
}

func (ls *levelSet) remove(e Edge) bool {
	k := e.Key()
	if _, exists := ls.keys[k]; !exists {
		return false
	}
	delete(ls.keys, k)
	ls.edges = slices.DeleteFunc(ls.edges, func(f Edge) bool { return f.Key() == k })
	return true
}

// retain keeps only the edges for which keep returns true and reports how
// many were dropped.
func (ls *levelSet) retain(keep func(Edge) bool) int {
	before := len(ls.edges)
	ls.edges = slices.DeleteFunc(ls.edges, func(f Edge) bool {
		if keep(f) {
			return false
		}
		delete(ls.keys, f.Key())
		return true
	})
	return before - len(ls.edges)
}

// Hypergraph is the interference hypergraph H=(V,E) of a set of stations.
// V is {1..N}; E is partitioned into level sets E[0..N] by cardinality.
//
// Hypergraph is not safe for concurrent mutation. Once Generate returns it,
// treat it as read-only.
type Hypergraph struct {
	n         int
	locations []Point
	levels    []*levelSet
}

// NewHypergraph returns an edgeless hypergraph over n vertices. locations[i]
// is the position of vertex i+1; the slice is copied.
func NewHypergraph(n int, locations []Point) (*Hypergraph, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative vertex count %d", ErrLocationsMismatch, n)
	}
	if len(locations) != n {
		return nil, fmt.Errorf("%w: %d locations for %d vertices", ErrLocationsMismatch, len(locations), n)
	}
	h := &Hypergraph{
		n:         n,
		locations: slices.Clone(locations),
		levels:    make([]*levelSet, n+1),
	}
	for k := range h.levels {
		h.levels[k] = newLevelSet()
	}
	return h, nil
}

// NumVertices returns N.
func (h *Hypergraph) NumVertices() int { return h.n }

// Location returns the position of vertex v (1-based).
func (h *Hypergraph) Location(v int) (Point, error) {
	if v < 1 || v > h.n {
		return Point{}, fmt.Errorf("%w: %d not in [1,%d]", ErrVertexOutOfRange, v, h.n)
	}
	return h.locations[v-1], nil
}

// Locations returns a copy of every vertex position, ordered by vertex ID.
func (h *Hypergraph) Locations() []Point {
	return slices.Clone(h.locations)
}

// locationsOf maps vertex IDs to positions. IDs must already be validated.
func (h *Hypergraph) locationsOf(e Edge) []Point {
	out := make([]Point, len(e))
	for i, v := range e {
		out[i] = h.locations[v-1]
	}
	return out
}

func (h *Hypergraph) normalize(vertices []int) (Edge, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyEdge
	}
	e := NewEdge(vertices...)
	for i, v := range e {
		if v < 1 || v > h.n {
			return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrVertexOutOfRange, v, h.n)
		}
		if i > 0 && e[i-1] == v {
			return nil, fmt.Errorf("%w: %d in %v", ErrDuplicateVertex, v, e)
		}
	}
	return e, nil
}

// AddEdge inserts the edge into its level set. Duplicates are ignored.
// Malformed edges are rejected without modifying the hypergraph.
func (h *Hypergraph) AddEdge(vertices ...int) error {
	e, err := h.normalize(vertices)
	if err != nil {
		return err
	}
	h.levels[len(e)].add(e)
	return nil
}

// AddEdges inserts every edge. A malformed edge does not stop the others
// from being added; all failures are returned joined.
func (h *Hypergraph) AddEdges(edges ...[]int) error {
	var errs []error
	for _, e := range edges {
		if err := h.AddEdge(e...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RemoveEdge deletes the edge if present.
func (h *Hypergraph) RemoveEdge(vertices ...int) {
	e, err := h.normalize(vertices)
	if err != nil {
		return
	}
	h.levels[len(e)].remove(e)
}

// HasEdge reports whether the edge is present.
func (h *Hypergraph) HasEdge(vertices ...int) bool {
	e, err := h.normalize(vertices)
	if err != nil {
		return false
	}
	_, ok := h.levels[len(e)].keys[e.Key()]
	return ok
}

// RemoveSupersetsOf deletes every edge of cardinality greater than len(e)
// that contains e, and returns how many were removed. e need not be an edge.
func (h *Hypergraph) RemoveSupersetsOf(vertices ...int) int {
	e := NewEdge(vertices...)
	removed := 0
	for k := len(e) + 1; k <= h.n; k++ {
		removed += h.levels[k].retain(func(f Edge) bool { return !e.IsSubsetOf(f) })
	}
	return removed
}

// SetLevelSet replaces level k with edges. Every edge must have exactly k
// valid vertices.
func (h *Hypergraph) SetLevelSet(k int, edges []Edge) error {
	if k < 0 || k > h.n {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrLevelOutOfRange, k, h.n)
	}
	ls := newLevelSet()
	for _, raw := range edges {
		e, err := h.normalize(raw)
		if err != nil {
			return err
		}
		if len(e) != k {
			return fmt.Errorf("%w: edge %v has %d vertices, level is %d", ErrLevelOutOfRange, e, len(e), k)
		}
		ls.add(e)
	}
	h.levels[k] = ls
	return nil
}

// LevelSet returns a copy of the edges of cardinality k, in insertion order.
func (h *Hypergraph) LevelSet(k int) []Edge {
	if k < 0 || k > h.n {
		return nil
	}
	out := make([]Edge, len(h.levels[k].edges))
	for i, e := range h.levels[k].edges {
		out[i] = slices.Clone(e)
	}
	return out
}

// Edges returns every edge, smallest level first.
func (h *Hypergraph) Edges() []Edge {
	var out []Edge
	for k := 0; k <= h.n; k++ {
		out = append(out, h.LevelSet(k)...)
	}
	return out
}

// NumEdges returns |E|.
func (h *Hypergraph) NumEdges() int {
	total := 0
	for _, ls := range h.levels {
		total += len(ls.edges)
	}
	return total
}

// IsIndependentSet reports whether J contains no edge.
func (h *Hypergraph) IsIndependentSet(j []int) bool {
	set := NewEdge(j...)
	set = slices.Compact(set)
	for k := 1; k <= len(set) && k <= h.n; k++ {
		for _, e := range h.levels[k].edges {
			if e.IsSubsetOf(set) {
				return false
			}
		}
	}
	return true
}

// AdjacencyList maps every vertex to the vertices it shares an edge with.
// Neighbours appear in the order they are first encountered.
func (h *Hypergraph) AdjacencyList() map[int][]int {
	adj := make(map[int][]int, h.n)
	for v := 1; v <= h.n; v++ {
		adj[v] = []int{}
	}
	for _, ls := range h.levels {
		for _, e := range ls.edges {
			for pair := range Combinations(e, 2) {
				i, j := pair[0], pair[1]
				if !slices.Contains(adj[j], i) {
					adj[j] = append(adj[j], i)
				}
				if !slices.Contains(adj[i], j) {
					adj[i] = append(adj[i], j)
				}
			}
		}
	}
	return adj
}

// InterferenceWeights returns the N×N matrix Δ, indexed from zero, where
// Δ[i-1][j-1] is the largest 1/(|e|-1) over edges e containing both i and j.
func (h *Hypergraph) InterferenceWeights() [][]float64 {
	delta := make([][]float64, h.n)
	for i := range delta {
		delta[i] = make([]float64, h.n)
	}
	for _, ls := range h.levels {
		for _, e := range ls.edges {
			if len(e) < 2 {
				continue
			}
			w := 1.0 / float64(len(e)-1)
			for pair := range Combinations(e, 2) {
				i, j := pair[0]-1, pair[1]-1
				delta[i][j] = max(delta[i][j], w)
				delta[j][i] = delta[i][j]
			}
		}
	}
	return delta
}

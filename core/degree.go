package core

// VertexDegree holds the two per-vertex maxima behind the interference
// degree.
type VertexDegree struct {
	Vertex int
	// DeltaPrime is the largest total weight Δ(i,J) over nonempty
	// independent subsets J of the vertex's neighbourhood.
	DeltaPrime float64
	// DeltaDoublePrime is the largest 1 + Δ(i,J) over nonempty subsets J
	// of the neighbourhood such that J ∪ {i} is independent.
	DeltaDoublePrime float64
}

// Max returns max(Δ′, Δ″).
func (d VertexDegree) Max() float64 {
	return max(d.DeltaPrime, d.DeltaDoublePrime)
}

// DegreeReport is the per-vertex breakdown of σ(H).
type DegreeReport struct {
	Vertices []VertexDegree
	Sigma    float64
}

// AnalyzeDegree computes Δ′ and Δ″ for every vertex and the interference
// degree σ(H). Each neighbourhood's power set is enumerated, so the cost is
// exponential in the largest degree.
//
// The empty subset never contributes to Δ″; a vertex with no qualifying
// nonempty J gets Δ″ = 0 rather than 1.
func (h *Hypergraph) AnalyzeDegree() DegreeReport {
	delta := h.InterferenceWeights()
	adj := h.AdjacencyList()

	report := DegreeReport{Vertices: make([]VertexDegree, 0, h.n)}
	for i := 1; i <= h.n; i++ {
		d := VertexDegree{Vertex: i}
		for j := range PowerSet(adj[i]) {
			if len(j) == 0 {
				continue
			}
			weight := 0.0
			for _, v := range j {
				weight += delta[i-1][v-1]
			}
			if h.IsIndependentSet(j) {
				d.DeltaPrime = max(d.DeltaPrime, weight)
			}
			if h.IsIndependentSet(append(j, i)) {
				d.DeltaDoublePrime = max(d.DeltaDoublePrime, 1+weight)
			}
		}
		report.Vertices = append(report.Vertices, d)
		report.Sigma = max(report.Sigma, d.Max())
	}
	return report
}

// InterferenceDegree returns σ(H).
func (h *Hypergraph) InterferenceDegree() float64 {
	return h.AnalyzeDegree().Sigma
}

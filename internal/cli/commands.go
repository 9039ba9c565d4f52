package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/internal/logging"
	"github.com/signalsfoundry/interference-hypergraph/kb"
	"github.com/signalsfoundry/interference-hypergraph/search"
	"github.com/signalsfoundry/interference-hypergraph/stations"
	"github.com/signalsfoundry/interference-hypergraph/sweep"
)

func addNetworkFlags(cmd *cobra.Command, f *networkFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.scenario, "scenario", "", "scenario file (yaml or json)")
	fs.IntVarP(&f.count, "stations", "n", 0, "place this many stations uniformly on the circle instead of a scenario")
	fs.BoolVar(&f.centre, "centre", false, "add a station at the circle's centre")
	fs.Float64VarP(&f.exponent, "exponent", "g", 0, "path-loss exponent gamma")
	fs.Float64VarP(&f.threshold, "threshold", "b", 0, "reception threshold beta")
}

// ---- generate ----

type levelResult struct {
	Size  int     `json:"size" yaml:"size"`
	Edges [][]int `json:"edges" yaml:"edges"`
}

type generateResult struct {
	Network   string        `json:"network" yaml:"network"`
	Stations  int           `json:"stations" yaml:"stations"`
	Exponent  float64       `json:"exponent" yaml:"exponent"`
	Threshold float64       `json:"threshold" yaml:"threshold"`
	Edges     int           `json:"edges" yaml:"edges"`
	Levels    []levelResult `json:"levels" yaml:"levels"`
}

func newGenerateResult(n *network, h *core.Hypergraph) *generateResult {
	res := &generateResult{
		Network:   n.name,
		Stations:  h.NumVertices(),
		Exponent:  n.params.Exponent,
		Threshold: n.params.Threshold,
		Edges:     h.NumEdges(),
		Levels:    []levelResult{},
	}
	for k := 1; k <= h.NumVertices(); k++ {
		level := h.LevelSet(k)
		if len(level) == 0 {
			continue
		}
		lr := levelResult{Size: k, Edges: make([][]int, len(level))}
		for i, e := range level {
			lr.Edges[i] = []int(e)
		}
		res.Levels = append(res.Levels, lr)
	}
	return res
}

func (r *generateResult) renderText(w io.Writer) error {
	header(w, r.Network, r.Stations, r.Exponent, r.Threshold)
	for _, lr := range r.Levels {
		edges := make([]string, len(lr.Edges))
		for i, e := range lr.Edges {
			edges[i] = core.Edge(e).String()
		}
		fmt.Fprintf(w, "E[%d] = [%s]\n", lr.Size, strings.Join(edges, ", "))
	}
	_, err := fmt.Fprintf(w, "edges: %d\n", r.Edges)
	return err
}

func newGenerateCmd() *cobra.Command {
	var f networkFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the hypergraph of minimal forbidden station sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			n, h, err := rt.generate(cmd, f)
			if err != nil {
				return err
			}
			return rt.printResult(newGenerateResult(n, h))
		},
	}
	addNetworkFlags(cmd, &f)
	return cmd
}

func (rt *runtime) generate(cmd *cobra.Command, f networkFlags) (*network, *core.Hypergraph, error) {
	n, err := resolveNetwork(rt.cfg, f)
	if err != nil {
		return nil, nil, err
	}
	g, err := rt.generator(n.params)
	if err != nil {
		return nil, nil, err
	}
	h, err := g.Generate(cmd.Context(), n.locations())
	if err != nil {
		return nil, nil, err
	}
	return n, h, nil
}

// ---- degree ----

type vertexResult struct {
	Vertex           int     `json:"vertex" yaml:"vertex"`
	DeltaPrime       float64 `json:"delta_prime" yaml:"delta_prime"`
	DeltaDoublePrime float64 `json:"delta_double_prime" yaml:"delta_double_prime"`
}

type degreeResult struct {
	Network   string         `json:"network" yaml:"network"`
	Stations  int            `json:"stations" yaml:"stations"`
	Exponent  float64        `json:"exponent" yaml:"exponent"`
	Threshold float64        `json:"threshold" yaml:"threshold"`
	Edges     int            `json:"edges" yaml:"edges"`
	Vertices  []vertexResult `json:"vertices" yaml:"vertices"`
	Sigma     float64        `json:"sigma" yaml:"sigma"`

	// WorstReceiver is the vertex receiving the most energy when every
	// station transmits; 0 when there are fewer than two stations.
	WorstReceiver int     `json:"worst_receiver,omitempty" yaml:"worst_receiver,omitempty"`
	WorstEnergy   float64 `json:"worst_energy,omitempty" yaml:"worst_energy,omitempty"`
}

func (r *degreeResult) renderText(w io.Writer) error {
	header(w, r.Network, r.Stations, r.Exponent, r.Threshold)
	fmt.Fprintf(w, "edges: %d\n", r.Edges)
	tw := newTable(w)
	fmt.Fprintln(tw, "vertex\tdelta'\tdelta''")
	for _, v := range r.Vertices {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\n", v.Vertex, v.DeltaPrime, v.DeltaDoublePrime)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if r.WorstReceiver > 0 {
		fmt.Fprintf(w, "worst receiver: %d (energy %.4f)\n", r.WorstReceiver, r.WorstEnergy)
	}
	_, err := fmt.Fprintf(w, "sigma: %.4f\n", r.Sigma)
	return err
}

func newDegreeCmd() *cobra.Command {
	var f networkFlags
	cmd := &cobra.Command{
		Use:   "degree",
		Short: "Report the interference degree sigma(H) with per-station maxima",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			n, h, err := rt.generate(cmd, f)
			if err != nil {
				return err
			}
			report := h.AnalyzeDegree()
			rt.collector.SetInterferenceDegree(report.Sigma)
			rt.log.Info(cmd.Context(), "interference degree computed",
				logging.Int("stations", h.NumVertices()),
				logging.Float("sigma", report.Sigma),
			)

			res := &degreeResult{
				Network:   n.name,
				Stations:  h.NumVertices(),
				Exponent:  n.params.Exponent,
				Threshold: n.params.Threshold,
				Edges:     h.NumEdges(),
				Vertices:  make([]vertexResult, len(report.Vertices)),
				Sigma:     report.Sigma,
			}
			for i, v := range report.Vertices {
				res.Vertices[i] = vertexResult{Vertex: v.Vertex, DeltaPrime: v.DeltaPrime, DeltaDoublePrime: v.DeltaDoublePrime}
			}
			if idx, energy := core.WorstCaseReceiver(n.locations(), n.params.Exponent); idx >= 0 {
				res.WorstReceiver, res.WorstEnergy = idx+1, energy
			}
			return rt.printResult(res)
		},
	}
	addNetworkFlags(cmd, &f)
	return cmd
}

// ---- search ----

type searchResult struct {
	Network    string  `json:"network" yaml:"network"`
	Stations   int     `json:"stations" yaml:"stations"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	Exponent   float64 `json:"exponent" yaml:"exponent"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	Low        float64 `json:"low" yaml:"low"`
	High       float64 `json:"high" yaml:"high"`
}

func (r *searchResult) renderText(w io.Writer) error {
	fmt.Fprintf(w, "network %s: %d stations, beta=%g\n", r.Network, r.Stations, r.Threshold)
	_, err := fmt.Fprintf(w, "smallest feasible gamma = %.6f (%d iterations, bracket [%.6f, %.6f])\n",
		r.Exponent, r.Iterations, r.Low, r.High)
	return err
}

func newSearchCmd() *cobra.Command {
	var (
		f   networkFlags
		cfg search.Config
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Bisect for the smallest path-loss exponent with no forbidden set",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			n, err := resolveNetwork(rt.cfg, f)
			if err != nil {
				return err
			}

			sc := rt.cfg.SearchConfig()
			sc.Threshold = n.params.Threshold
			if cfg.Low != 0 {
				sc.Low = cfg.Low
			}
			if cfg.High != 0 {
				sc.High = cfg.High
			}
			if cfg.Tolerance != 0 {
				sc.Tolerance = cfg.Tolerance
			}

			s, err := search.NewSearcher(sc, rt.log,
				search.WithMetricsRecorder(rt.collector),
				search.WithGeneratorOptions(core.WithMetricsRecorder(rt.collector)),
			)
			if err != nil {
				return err
			}
			res, err := s.SmallestFeasibleExponent(cmd.Context(), n.locations())
			if err != nil {
				return err
			}
			return rt.printResult(&searchResult{
				Network:    n.name,
				Stations:   len(n.stations),
				Threshold:  sc.Threshold,
				Exponent:   res.Exponent,
				Iterations: res.Iterations,
				Low:        res.Low,
				High:       res.High,
			})
		},
	}
	addNetworkFlags(cmd, &f)
	fs := cmd.Flags()
	fs.Float64Var(&cfg.Low, "low", 0, "lower end of the exponent bracket")
	fs.Float64Var(&cfg.High, "high", 0, "upper end of the exponent bracket")
	fs.Float64Var(&cfg.Tolerance, "tolerance", 0, "stop once the midpoint moves by no more than this")
	return cmd
}

// ---- sweep ----

type sweepResult struct {
	Network  string         `json:"network" yaml:"network"`
	Stations int            `json:"stations" yaml:"stations"`
	Orbital  int            `json:"orbital" yaml:"orbital"`
	Samples  []sweep.Sample `json:"samples" yaml:"samples"`
	MaxSigma float64        `json:"max_sigma" yaml:"max_sigma"`
}

func (r *sweepResult) renderText(w io.Writer) error {
	fmt.Fprintf(w, "network %s: %d stations (%d orbital)\n", r.Network, r.Stations, r.Orbital)
	tw := newTable(w)
	fmt.Fprintln(tw, "time\tedges\tsigma")
	for _, s := range r.Samples {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\n", s.Time.Format(time.RFC3339), s.Edges, s.Sigma)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "max sigma: %.4f\n", r.MaxSigma)
	return err
}

func newSweepCmd() *cobra.Command {
	var (
		f        networkFlags
		start    string
		tick     time.Duration
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Propagate orbital stations over time and track the hypergraph",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			n, err := resolveNetwork(rt.cfg, f)
			if err != nil {
				return err
			}

			if start != "" {
				rt.cfg.Sweep.Start = start
			}
			if tick != 0 {
				rt.cfg.Sweep.Tick = tick
			}
			if duration != 0 {
				rt.cfg.Sweep.Duration = duration
			}
			at, err := rt.cfg.SweepStart(time.Now().UTC())
			if err != nil {
				return err
			}

			store := kb.NewStationStore()
			if err := store.AddStations(n.stations...); err != nil {
				return err
			}
			orbitals, err := stations.OrbitalStations(n.stations)
			if err != nil {
				return err
			}
			g, err := rt.generator(n.params)
			if err != nil {
				return err
			}
			sw, err := sweep.NewSweeper(store, orbitals, g, rt.log, sweep.WithScaleKm(rt.cfg.Stations.ScaleKm))
			if err != nil {
				return err
			}
			samples, err := sw.Run(cmd.Context(), at, rt.cfg.Sweep.Tick, rt.cfg.Sweep.Duration)
			if err != nil {
				return err
			}
			rt.collector.SetInterferenceDegree(samples[len(samples)-1].Sigma)

			return rt.printResult(&sweepResult{
				Network:  n.name,
				Stations: len(n.stations),
				Orbital:  len(orbitals),
				Samples:  samples,
				MaxSigma: sweep.MaxSigma(samples),
			})
		},
	}
	addNetworkFlags(cmd, &f)
	fs := cmd.Flags()
	fs.StringVar(&start, "start", "", "sweep start time (RFC 3339, default now)")
	fs.DurationVar(&tick, "tick", 0, "simulation step")
	fs.DurationVar(&duration, "duration", 0, "simulated time span")
	return cmd
}

// ---- version ----

type versionResult struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

func (r *versionResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "hypergraph %s (commit: %s, built: %s)\n", r.Version, r.Commit, r.BuildDate)
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			return rt.printResult(&versionResult{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
		},
	}
}

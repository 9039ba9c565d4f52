// Package cli implements the hypergraph command-line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/internal/config"
	"github.com/signalsfoundry/interference-hypergraph/internal/logging"
	"github.com/signalsfoundry/interference-hypergraph/internal/observability"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var ErrUnknownOutput = errors.New("unknown output format")

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// runtime carries initialised dependencies through the command tree.
type runtime struct {
	cfg       *config.Config
	log       logging.Logger
	collector *observability.GeneratorCollector
	output    string
	out       io.Writer

	shutdownTracing func(context.Context) error
	metricsSrv      *http.Server

	closeOnce sync.Once
	closed    bool
}

type runtimeKey struct{}

// NewRootCommand creates the root command with global flags and every
// subcommand.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hypergraph",
		Short: "Interference hypergraphs for wireless networks under the SINR model",
		Long: "hypergraph builds the hypergraph of minimal forbidden station sets for a\n" +
			"wireless network <S, gamma, beta>, reports its interference degree, and\n" +
			"searches for the path-loss exponent at which a layout becomes feasible.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, yaml)")

	for _, sub := range []*cobra.Command{
		newGenerateCmd(),
		newDegreeCmd(),
		newSearchCmd(),
		newSweepCmd(),
		newVersionCmd(),
	} {
		cmd.AddCommand(withCleanup(sub))
	}
	return cmd
}

// withCleanup makes sub release the runtime after RunE returns. Cobra skips
// post-run hooks when RunE fails, so the release cannot live there.
func withCleanup(sub *cobra.Command) *cobra.Command {
	run := sub.RunE
	if run == nil {
		return sub
	}
	sub.RunE = func(cmd *cobra.Command, args []string) error {
		if rt, err := runtimeFrom(cmd); err == nil {
			defer rt.close()
		}
		return run(cmd, args)
	}
	return sub
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	format := strings.ToLower(opts.OutputFormat)
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, opts.OutputFormat)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := (config.Overrides{LogLevel: opts.LogLevel}).Apply(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	base := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	ctx, log := logging.WithRunLogger(ctx, base.With(logging.String("command", cmd.Name())))

	collector, err := observability.NewGeneratorCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("metrics initialisation failed: %w", err)
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		Writer:      cmd.ErrOrStderr(),
	}, log)
	if err != nil {
		return fmt.Errorf("tracing initialisation failed: %w", err)
	}

	rt := &runtime{
		cfg:             cfg,
		log:             log,
		collector:       collector,
		output:          format,
		out:             cmd.OutOrStdout(),
		shutdownTracing: shutdown,
		metricsSrv:      observability.ServeMetrics(cfg.Metrics.Addr, collector, log),
	}
	cmd.SetContext(context.WithValue(ctx, runtimeKey{}, rt))
	return nil
}

// close flushes tracing and stops the metrics server. It is safe to call
// more than once.
func (rt *runtime) close() {
	rt.closeOnce.Do(func() {
		observability.ShutdownWithTimeout(context.Background(), rt.shutdownTracing, rt.log)
		if rt.metricsSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = rt.metricsSrv.Shutdown(ctx)
		}
		rt.closed = true
	})
}

func runtimeFrom(cmd *cobra.Command) (*runtime, error) {
	if ctx := cmd.Context(); ctx != nil {
		if rt, ok := ctx.Value(runtimeKey{}).(*runtime); ok {
			return rt, nil
		}
	}
	return nil, errors.New("cli: command run without initialisation")
}

// generator builds a Generator wired to the runtime's logger and metrics.
func (rt *runtime) generator(params core.Params) (*core.Generator, error) {
	return core.NewGenerator(params, rt.log, core.WithMetricsRecorder(rt.collector))
}

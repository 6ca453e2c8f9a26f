package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/schedcore/rpsched/internal/config"
	"github.com/schedcore/rpsched/pkg/buildinfo"
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/iodot"
	"github.com/schedcore/rpsched/pkg/iotext/ddl"
	"github.com/schedcore/rpsched/pkg/iotext/lsd"
	"github.com/schedcore/rpsched/pkg/scheduler/exact"
	"github.com/schedcore/rpsched/pkg/scheduler/list"
	"github.com/schedcore/rpsched/pkg/transform"
)

// runOpts holds the root command's flags. Exactly one of ddlIn/lsdIn
// selects the input format; any combination of the output flags may be
// set, and at least one must be, per spec §6's
// "driver -<in-fmt> <in-path> -<out-fmt> <out-path>".
type runOpts struct {
	ddlIn, lsdIn                              string
	dotOut, dotsvgOut, dotpdfOut, analysisOut string
	ddlOut, lsdOut                            string
	null                                      bool
	timeout                                   time.Duration
	configPath                                string
	transformNames                            []string
}

func (c *CLI) rootCommand() *cobra.Command {
	opts := runOpts{configPath: "rpsched.toml"}
	var verbose bool

	root := &cobra.Command{
		Use:          "driver",
		Short:        "driver schedules acyclic instruction-dependence graphs to minimize register pressure",
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.Logger.SetLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, &opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.Flags().StringVar(&opts.ddlIn, "ddl", "", "read the input program from a DDL file")
	root.Flags().StringVar(&opts.lsdIn, "lsd", "", "read the input program from an LSD file")
	root.Flags().StringVar(&opts.dotOut, "dot", "", "write Graphviz DOT text to this path")
	root.Flags().StringVar(&opts.dotsvgOut, "dotsvg", "", "render the DOT graph to SVG at this path")
	root.Flags().StringVar(&opts.dotpdfOut, "dotpdf", "", "render the DOT graph to PDF at this path")
	root.Flags().StringVar(&opts.ddlOut, "ddl-out", "", "write the scheduled order back out as DDL")
	root.Flags().StringVar(&opts.lsdOut, "lsd-out", "", "write the scheduled order back out as LSD")
	root.Flags().StringVar(&opts.analysisOut, "analysis", "", "write a per-unit register-pressure analysis to this path")
	root.Flags().BoolVar(&opts.null, "null", false, "schedule without writing any output, for timing/benchmarking")
	root.Flags().DurationVar(&opts.timeout, "timeout", 0, "exact scheduler timeout (overrides the config file)")
	root.Flags().StringVar(&opts.configPath, "config", opts.configPath, "path to the optional rpsched.toml config file")
	root.Flags().StringSliceVar(&opts.transformNames, "transforms", nil, "comma-separated rewrite stage names to run (overrides the config file)")

	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// runTranslate implements the driver tool's single non-subcommand
// operation: parse one input format, run the rewrite pipeline and
// scheduler, and write zero or more output formats.
func runTranslate(cmd *cobra.Command, opts *runOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	d, err := parseInput(opts)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(opts.transformNames) > 0 {
		cfg.Transforms.Enabled = opts.transformNames
	}
	timeout := cfg.Scheduler.Timeout(exact.DefaultTimeoutBalanced)
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	prog := newProgress(logger)
	ps := &transform.PipelineScheduler{
		Pipeline: transform.BuildPipelineNamed(cfg.Transforms.Names()),
		Inner: &exact.Scheduler{
			Timeout:  timeout,
			Fallback: list.New(),
			Debug: func(info exact.DebugInfo) {
				logger.Debugf("exact search: %d units, %d expanded, %d memo hits, timed out=%v",
					info.NodeCount, info.Expanded, info.MemoHits, info.TimedOut)
			},
		},
	}

	sink := chain.New()
	if err := ps.Schedule(d, sink); err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}
	prog.done(fmt.Sprintf("scheduled %d units", sink.Len()))

	return writeOutputs(opts, d, sink, logger)
}

func parseInput(opts *runOpts) (*dag.DAG, error) {
	return parseInputFiles(opts.ddlIn, opts.lsdIn)
}

// parseInputFiles reads and parses exactly one of ddlIn/lsdIn, shared by
// the root command and the "watch" subcommand.
func parseInputFiles(ddlIn, lsdIn string) (*dag.DAG, error) {
	switch {
	case ddlIn != "" && lsdIn != "":
		return nil, fmt.Errorf("specify only one of --ddl or --lsd")
	case ddlIn != "":
		f, err := os.Open(ddlIn)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ddl.Parse(f)
	case lsdIn != "":
		f, err := os.Open(lsdIn)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return lsd.Parse(f)
	default:
		return nil, fmt.Errorf("specify an input with --ddl or --lsd")
	}
}

func writeOutputs(opts *runOpts, d *dag.DAG, sink *chain.Chain, logger interface{ Infof(string, ...any) }) error {
	wrote := false

	if opts.dotOut != "" {
		if err := writeFile(opts.dotOut, func(w io.Writer) error { return iodot.Write(d, w, iodot.Options{}) }); err != nil {
			return fmt.Errorf("writing dot: %w", err)
		}
		wrote = true
	}
	if opts.dotsvgOut != "" {
		if err := writeRendered(opts.dotsvgOut, d, iodot.RenderSVG); err != nil {
			return fmt.Errorf("writing dotsvg: %w", err)
		}
		wrote = true
	}
	if opts.dotpdfOut != "" {
		if err := writeRendered(opts.dotpdfOut, d, iodot.RenderPDF); err != nil {
			return fmt.Errorf("writing dotpdf: %w", err)
		}
		wrote = true
	}
	if opts.ddlOut != "" {
		if err := writeFile(opts.ddlOut, func(w io.Writer) error { return ddl.WriteOrdered(sink.Units(), d, w) }); err != nil {
			return fmt.Errorf("writing ddl: %w", err)
		}
		wrote = true
	}
	if opts.lsdOut != "" {
		if err := writeFile(opts.lsdOut, func(w io.Writer) error { return lsd.WriteOrdered(sink.Units(), d, w) }); err != nil {
			return fmt.Errorf("writing lsd: %w", err)
		}
		wrote = true
	}
	if opts.analysisOut != "" {
		if err := writeFile(opts.analysisOut, func(w io.Writer) error { return writeAnalysis(w, sink, d) }); err != nil {
			return fmt.Errorf("writing analysis: %w", err)
		}
		wrote = true
	}
	if opts.null {
		wrote = true
	}

	if !wrote {
		return fmt.Errorf("no output format specified (use --dot, --dotsvg, --dotpdf, --ddl-out, --lsd-out, --analysis, or --null)")
	}
	logger.Infof("done")
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func writeRendered(path string, d *dag.DAG, render func(string) ([]byte, error)) error {
	data, err := render(iodot.ToDOT(d, iodot.Options{}))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

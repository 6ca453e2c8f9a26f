package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/schedcore/rpsched/internal/config"
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/scheduler/exact"
	"github.com/schedcore/rpsched/pkg/scheduler/list"
	"github.com/schedcore/rpsched/pkg/transform"
)

type watchOpts struct {
	ddlIn, lsdIn string
	timeout      time.Duration
	configPath   string
}

// watchCommand mirrors the teacher's OptimalSearch Progress/Debug
// callback pattern (internal/cli/ordering.go), applied to the exact
// scheduler's branch-and-bound search instead of edge-crossing search:
// a live bubbletea view of explored/pruned/best-peak-so-far.
func (c *CLI) watchCommand() *cobra.Command {
	opts := watchOpts{configPath: "rpsched.toml"}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "live-render the exact scheduler's branch-and-bound search progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(&opts)
		},
	}
	cmd.Flags().StringVar(&opts.ddlIn, "ddl", "", "read the input program from a DDL file")
	cmd.Flags().StringVar(&opts.lsdIn, "lsd", "", "read the input program from an LSD file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "exact scheduler timeout")
	cmd.Flags().StringVar(&opts.configPath, "config", opts.configPath, "path to the optional rpsched.toml config file")
	return cmd
}

func runWatch(opts *watchOpts) error {
	d, err := parseInputFiles(opts.ddlIn, opts.lsdIn)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	timeout := cfg.Scheduler.Timeout(exact.DefaultTimeoutBalanced)
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	model := newWatchModel(timeout)
	program := tea.NewProgram(model)

	sc := &exact.Scheduler{
		Timeout:  timeout,
		Fallback: list.New(),
		Progress: func(expanded, bestPeak int) {
			program.Send(progressMsg{expanded: expanded, bestPeak: bestPeak})
		},
		Debug: func(info exact.DebugInfo) {
			program.Send(doneMsg{info: info})
		},
	}
	ps := &transform.PipelineScheduler{
		Pipeline: transform.BuildPipelineNamed(cfg.Transforms.Names()),
		Inner:    sc,
	}

	sink := chain.New()
	errCh := make(chan error, 1)
	go func() { errCh <- ps.Schedule(d, sink) }()

	if _, err := program.Run(); err != nil {
		return err
	}
	return <-errCh
}

type progressMsg struct{ expanded, bestPeak int }
type doneMsg struct{ info exact.DebugInfo }
type tickMsg time.Time

type watchModel struct {
	timeout            time.Duration
	start              time.Time
	expanded, bestPeak int
	done               bool
	info               exact.DebugInfo
}

func newWatchModel(timeout time.Duration) *watchModel {
	return &watchModel{timeout: timeout, bestPeak: -1, start: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *watchModel) Init() tea.Cmd { return tick() }

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.expanded, m.bestPeak = msg.expanded, msg.bestPeak
	case doneMsg:
		m.done = true
		m.info = msg.info
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *watchModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render("exact scheduler search")
	elapsed := time.Since(m.start).Round(100 * time.Millisecond)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "elapsed:  %v / %v\n", elapsed, m.timeout)
	fmt.Fprintf(&b, "expanded: %d\n", m.expanded)
	if m.bestPeak < 0 {
		fmt.Fprintf(&b, "best:     (none yet)\n")
	} else {
		fmt.Fprintf(&b, "best:     %d\n", m.bestPeak)
	}

	if m.done {
		status := "complete"
		if m.info.TimedOut {
			status = lipgloss.NewStyle().Foreground(colorRed).Render("timed out")
		}
		fmt.Fprintf(&b, "\nsearch %s: %d units, %d expanded, %d memo hits, %d memo entries\n",
			status, m.info.NodeCount, m.info.Expanded, m.info.MemoHits, m.info.MemoEntries)
	} else {
		fmt.Fprintf(&b, "\npress q to detach (the search keeps running in the background)\n")
	}
	return b.String()
}

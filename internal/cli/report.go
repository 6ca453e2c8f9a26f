package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
)

// writeAnalysis renders the driver tool's "analysis" output format: a
// colorized per-unit table of position, internal register pressure,
// live-register count immediately after the unit executes, and the
// running peak - a textual rendering of what
// [chain.Chain.ComputeRPTrace] computes internally, grounded in the
// teacher's optimalOrderer progress-reporting style.
func writeAnalysis(w io.Writer, c *chain.Chain, d *dag.DAG) error {
	trace := c.ComputeRPTrace(d, false)

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	peakStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	dim := lipgloss.NewStyle().Foreground(colorDim)

	overallPeak := 0
	rows := make([][]string, 0, len(trace))
	for _, step := range trace {
		if step.Peak > overallPeak {
			overallPeak = step.Peak
		}
		rows = append(rows, []string{
			strconv.Itoa(step.Position),
			step.Unit.String(),
			strconv.Itoa(int(step.IRP)),
			strconv.Itoa(step.Live),
			strconv.Itoa(step.Peak),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dim).
		Headers("#", "Unit", "IRP", "Live", "Peak").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(trace) && trace[row].Peak == overallPeak {
				return peakStyle
			}
			return lipgloss.NewStyle()
		})

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npeak register pressure: %d\n", overallPeak)
	return err
}

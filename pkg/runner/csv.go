package runner

import (
	"encoding/csv"
	"fmt"
	"io"

	"prastar/pkg/mapio"
	"prastar/pkg/search"
)

// csvHeader is spec.md §6's export schema, column order included.
var csvHeader = []string{
	"start_x", "start_y", "goal_x", "goal_y", "optimal_cost",
	"solution_cost", "expanded", "generated", "duration", "first_move_duration",
}

// CSVWriter appends one row per scenario result to an export file, using
// the sentinel -1 solution_cost spec.md §6/§7 specify for NoPath.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter wraps w and writes the header row immediately.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if err := cw.w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("runner: writing CSV header: %w", err)
	}
	return cw, nil
}

// WriteRow appends sc's result. out may describe a NoPath search, in
// which case solution_cost is written as -1 per spec.md §7.
func (cw *CSVWriter) WriteRow(sc mapio.Scenario, out *search.Output) error {
	solutionCost := out.PathCost
	if search.IsNoPath(out) {
		solutionCost = -1
	}
	row := []string{
		fmt.Sprintf("%d", sc.StartX),
		fmt.Sprintf("%d", sc.StartY),
		fmt.Sprintf("%d", sc.GoalX),
		fmt.Sprintf("%d", sc.GoalY),
		fmt.Sprintf("%.5f", sc.OptimalLength),
		fmt.Sprintf("%.5f", solutionCost),
		fmt.Sprintf("%d", out.Expanded),
		fmt.Sprintf("%d", out.Generated),
		fmt.Sprintf("%.9f", out.Duration.Seconds()),
		fmt.Sprintf("%.9f", out.FirstMoveDuration.Seconds()),
	}
	return cw.w.Write(row)
}

// Flush flushes buffered rows and reports any write error encountered.
func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

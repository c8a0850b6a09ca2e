package loadtest

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

// verifyResults checks the latest snapshot's summary covers the full
// matrix and that every board size has a non-empty Pareto front.
func verifyResults(ctx context.Context, c *client, stats *Stats) error {
	var summary types.Table
	if err := c.get(ctx, "/tables/"+model.TableSummary, &summary); err != nil {
		return err
	}
	stats.SummaryRows = len(summary.Rows)
	if want := expectedSummaryRows(); stats.SummaryRows != want {
		return fmt.Errorf("summary has %d rows, want %d", stats.SummaryRows, want)
	}

	var front types.Table
	if err := c.get(ctx, "/tables/"+model.TablePareto, &front); err != nil {
		return err
	}
	stats.ParetoRows = len(front.Rows)
	return checkFrontCoverage(summary, front)
}

// checkFrontCoverage reports a dims value present in summary with no row in
// the front table.
func checkFrontCoverage(summary, front types.Table) error {
	si, fi := slices.Index(summary.Columns, "dims"), slices.Index(front.Columns, "dims")
	if si < 0 || fi < 0 {
		return fmt.Errorf("dims column missing")
	}
	covered := make(map[string]bool)
	for _, row := range front.Rows {
		covered[types.FormatCell(row[fi])] = true
	}
	for _, row := range summary.Rows {
		if d := types.FormatCell(row[si]); !covered[d] {
			return fmt.Errorf("no pareto front for dims %q", d)
		}
	}
	return nil
}

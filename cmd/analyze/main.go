// Command analyze turns a results file into statistics tables.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/okian/minestats/internal/adapters/export"
	"github.com/okian/minestats/internal/adapters/repository"
	"github.com/okian/minestats/internal/adapters/source"
	app "github.com/okian/minestats/internal/app"
	"github.com/okian/minestats/internal/domain/pareto"
	"github.com/okian/minestats/internal/domain/types"
	"github.com/okian/minestats/pkg/logger"
	"github.com/spf13/cobra"
)

const headRows = 20

type options struct {
	out      string
	xlsx     string
	sqlite   string
	sheet    string
	pareto   string
	parallel bool
	logLevel string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "analyze <results.csv|results.xlsx>",
		Short:         "Minesweeper results analyzer (results file -> stats tables)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd.Context(), stdout, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.out, "out", "", "directory to write output CSV tables")
	f.StringVar(&opts.xlsx, "xlsx", "", "write every table to one Excel workbook")
	f.StringVar(&opts.sqlite, "sqlite", "", "store the result as a snapshot in this SQLite database")
	f.StringVar(&opts.sheet, "sheet", "", "worksheet to read from an .xlsx input (default first)")
	f.StringVar(&opts.pareto, "pareto", "", "Pareto directions as metric=max|min,...; unnamed metrics keep their default")
	f.BoolVar(&opts.parallel, "parallel", false, "evaluate aggregation views concurrently")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	return cmd
}

func analyze(ctx context.Context, stdout io.Writer, path string, opts options) error {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		return err
	}
	if err := logger.SetLevelString(opts.logLevel); err != nil {
		return err
	}

	cfg := pareto.DefaultConfig()
	if opts.pareto != "" {
		var err error
		if cfg, err = pareto.ParseSpec(opts.pareto); err != nil {
			return err
		}
	}

	frame, err := source.ReadFile(path, source.WithSheet(opts.sheet))
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := app.NewPipeline(app.WithParetoConfig(cfg), app.WithParallel(opts.parallel)).Run(ctx, frame)
	if err != nil {
		return err
	}
	tables := res.Tables()

	fmt.Fprintf(stdout, "\nLoaded runs: %d\n", len(res.Runs))
	fmt.Fprintf(stdout, "Summary rows (algorithm, objective, dims): %d\n\n", len(res.Summary))
	if err := printHead(stdout, tables[1], headRows); err != nil {
		return err
	}

	if opts.out != "" {
		if _, err := export.WriteDir(opts.out, tables); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nWrote tables to: %s\n", opts.out)
	}
	if opts.xlsx != "" {
		if err := export.WriteWorkbook(opts.xlsx, tables); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote workbook to: %s\n", opts.xlsx)
	}
	if opts.sqlite != "" {
		if err := saveSnapshot(ctx, opts.sqlite, path, start, res, tables); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Stored snapshot in: %s\n", opts.sqlite)
	}
	return nil
}

func saveSnapshot(ctx context.Context, dbPath, src string, start time.Time, res *app.Result, tables []types.Table) error {
	store, err := repository.OpenSQLite(dbPath, repository.WithRetention(0))
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, &repository.Snapshot{
		ID:         uuid.NewString(),
		Source:     src,
		CreatedAt:  time.Now().UTC(),
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
		Report:     res.Report,
		Tables:     tables,
	})
}

// printHead writes the first n rows of t as right-aligned columns.
func printHead(w io.Writer, t types.Table, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, c := range t.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw, "\t")
	for r, row := range t.Rows {
		if r == n {
			break
		}
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, headCell(v))
		}
		fmt.Fprintln(tw, "\t")
	}
	return tw.Flush()
}

// headCell renders a null metric as NaN. Empty labels stay empty.
func headCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case types.Float:
		if !x.Valid {
			return "NaN"
		}
	case *types.Float:
		if x == nil || !x.Valid {
			return "NaN"
		}
	}
	return types.FormatCell(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// Command gen-runs writes synthetic solver results or load-tests a running
// service with them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/okian/minestats/internal/loadtest"
	"github.com/okian/minestats/internal/rungen"
	"github.com/okian/minestats/pkg/logger"
)

type options struct {
	seeds    int
	randSeed uint64
	boards   string
	output   string
	url      string
	load     loadtest.Config
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{load: loadtest.DefaultConfig()}
	fs := flag.NewFlagSet("gen-runs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.seeds, "seeds", 30, "seeds per (algorithm, objective, board)")
	fs.Uint64Var(&opts.randSeed, "rand", 1, "generator seed")
	fs.StringVar(&opts.boards, "boards", "", "comma separated HxW board sizes (default 3x3,5x5,8x8,10x10)")
	fs.StringVar(&opts.output, "o", "", "output CSV file (default stdout)")
	fs.StringVar(&opts.url, "url", "", "load-test the service at this base URL instead of writing a file")
	fs.IntVar(&opts.load.Batches, "batches", opts.load.Batches, "load test: distinct results files to upload")
	fs.IntVar(&opts.load.Duplicates, "duplicates", opts.load.Duplicates, "load test: batches to resubmit verbatim")
	fs.IntVar(&opts.load.Workers, "workers", opts.load.Workers, "load test: concurrent uploaders")
	fs.DurationVar(&opts.load.Timeout, "timeout", opts.load.Timeout, "load test: HTTP request timeout")
	fs.DurationVar(&opts.load.Wait, "wait", opts.load.Wait, "load test: how long to wait for processing")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	opts.load.BaseURL = strings.TrimRight(opts.url, "/")
	opts.load.Seeds = opts.seeds
	return opts, nil
}

func parseBoards(s string) ([]rungen.Board, error) {
	if strings.TrimSpace(s) == "" {
		return rungen.DefaultBoards, nil
	}
	var boards []rungen.Board
	for _, part := range strings.Split(s, ",") {
		h, w, ok := strings.Cut(strings.TrimSpace(part), "x")
		if !ok {
			return nil, fmt.Errorf("board %q: want HxW", part)
		}
		hv, err := strconv.Atoi(h)
		if err != nil || hv < 1 {
			return nil, fmt.Errorf("board %q: bad height", part)
		}
		wv, err := strconv.Atoi(w)
		if err != nil || wv < 1 {
			return nil, fmt.Errorf("board %q: bad width", part)
		}
		boards = append(boards, rungen.Board{W: wv, H: hv})
	}
	return boards, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.url != "" {
		if _, err := loadtest.Run(ctx, opts.load); err != nil {
			return err
		}
		return nil
	}

	boards, err := parseBoards(opts.boards)
	if err != nil {
		return err
	}
	cfg := rungen.DefaultConfig()
	cfg.Seeds = opts.seeds
	cfg.RandSeed = opts.randSeed
	cfg.Boards = boards
	runs := rungen.Generate(cfg)

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := rungen.WriteCSV(out, runs); err != nil {
		return err
	}
	logger.Get().Info(ctx, "runs written",
		logger.Int("runs", len(runs)),
		logger.String("output", opts.output))
	return nil
}

func main() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Get().Error(ctx, "gen-runs failed", logger.Error(err))
		os.Exit(1)
	}
}

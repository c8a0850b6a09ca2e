package loadtest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/okian/minestats/internal/rungen"
	"github.com/okian/minestats/pkg/logger"
)

// Batch is one results file to upload.
type Batch struct {
	Source string
	Body   []byte
}

// generateBatches renders cfg.Batches distinct results files followed by
// cfg.Duplicates verbatim copies of the first ones.
func generateBatches(ctx context.Context, cfg Config, stats *Stats) ([]Batch, error) {
	batches := make([]Batch, 0, cfg.Batches+cfg.Duplicates)
	for i := 0; i < cfg.Batches; i++ {
		gen := rungen.DefaultConfig()
		gen.Seeds = cfg.Seeds
		gen.RandSeed = uint64(i + 1)
		runs := rungen.Generate(gen)

		var buf bytes.Buffer
		if err := rungen.WriteCSV(&buf, runs); err != nil {
			return nil, fmt.Errorf("failed to render batch %d: %w", i, err)
		}
		batches = append(batches, Batch{Source: fmt.Sprintf("loadtest-%d", i), Body: buf.Bytes()})
		stats.RunsGenerated += len(runs)
	}
	for i := 0; i < cfg.Duplicates; i++ {
		dup := batches[i]
		dup.Source += "-dup"
		batches = append(batches, dup)
	}
	stats.BatchesGenerated = len(batches)

	logger.Get().Info(ctx, "generated batches",
		logger.Int("batches", len(batches)),
		logger.Int("runs", stats.RunsGenerated))
	return batches, nil
}

// expectedSummaryRows is the number of (algorithm, objective, dims) groups a
// default matrix yields.
func expectedSummaryRows() int {
	return len(rungen.DefaultAlgorithms) * len(rungen.DefaultObjectives) * len(rungen.DefaultBoards)
}

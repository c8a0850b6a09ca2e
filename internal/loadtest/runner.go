package loadtest

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/minestats/pkg/logger"
)

// Run executes a complete load test: generate batches, upload them,
// wait for the service to drain its queue and verify the published tables.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg)

	logger.Get().Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("batches", cfg.Batches),
		logger.Int("seeds", cfg.Seeds),
		logger.Int("duplicates", cfg.Duplicates),
		logger.Int("workers", cfg.Workers))

	if err := c.get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	batches, err := generateBatches(ctx, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("batch generation failed: %w", err)
	}

	submitBatches(ctx, cfg, c, batches, stats)
	if stats.Accepted == 0 {
		return stats, fmt.Errorf("no batch was accepted (%d failed)", stats.Failed)
	}

	if err := waitProcessed(ctx, cfg, c, stats); err != nil {
		return stats, fmt.Errorf("waiting for processing failed: %w", err)
	}

	if err := verifyResults(ctx, c, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, stats)
	return stats, nil
}

// waitProcessed polls /stats until the worker pool has finished every
// accepted batch or cfg.Wait elapses.
func waitProcessed(ctx context.Context, cfg Config, c *client, stats *Stats) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Wait)
	defer cancel()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		var s struct {
			Processed   int `json:"processed"`
			QueueLength int `json:"queueLength"`
		}
		if err := c.get(ctx, "/stats", &s); err == nil {
			stats.Processed = s.Processed
			if s.Processed >= stats.Accepted && s.QueueLength == 0 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%d of %d batches processed: %w", stats.Processed, stats.Accepted, ctx.Err())
		case <-ticker.C:
		}
	}
}

func logFinalStats(ctx context.Context, stats *Stats) {
	var runsPerSecond float64
	if stats.Duration > 0 {
		runsPerSecond = float64(stats.RunsGenerated) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("batchesGenerated", stats.BatchesGenerated),
		logger.Int("runsGenerated", stats.RunsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("processed", stats.Processed),
		logger.Int("summaryRows", stats.SummaryRows),
		logger.Int("paretoRows", stats.ParetoRows),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("runsPerSecond", runsPerSecond))
}

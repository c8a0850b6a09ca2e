package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/okian/minestats/pkg/logger"
)

type submitOutcome int

const (
	outcomeAccepted submitOutcome = iota
	outcomeDuplicate
	outcomeFailed
)

type ackResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type client struct {
	http    *http.Client
	baseURL string
}

func newClient(cfg Config) *client {
	return &client{http: &http.Client{Timeout: cfg.Timeout}, baseURL: cfg.BaseURL}
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) postRuns(ctx context.Context, b Batch) submitOutcome {
	u := c.baseURL + "/runs?source=" + url.QueryEscape(b.Source)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b.Body))
	if err != nil {
		return outcomeFailed
	}
	req.Header.Set("Content-Type", "text/csv")
	resp, err := c.http.Do(req)
	if err != nil {
		return outcomeFailed
	}
	defer resp.Body.Close()

	var ack ackResponse
	_ = json.NewDecoder(resp.Body).Decode(&ack)
	switch resp.StatusCode {
	case http.StatusAccepted:
		return outcomeAccepted
	case http.StatusOK:
		if ack.Duplicate {
			return outcomeDuplicate
		}
		return outcomeAccepted
	default:
		return outcomeFailed
	}
}

// submitBatches uploads batches concurrently using a worker pool. Originals
// are drained before their copies are sent so the copies hit the dedupe path.
func submitBatches(ctx context.Context, cfg Config, c *client, batches []Batch, stats *Stats) {
	logger.Get().Info(ctx, "submitting batches",
		logger.Int("batches", len(batches)),
		logger.Int("workers", cfg.Workers))

	var submitted, accepted, duplicate, failed atomic.Int64
	upload := func(bs []Batch) {
		ch := make(chan Batch, cfg.Workers*2)
		var wg sync.WaitGroup
		for i := 0; i < cfg.Workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for b := range ch {
					submitted.Add(1)
					switch c.postRuns(ctx, b) {
					case outcomeAccepted:
						accepted.Add(1)
					case outcomeDuplicate:
						duplicate.Add(1)
					default:
						failed.Add(1)
						logger.Get().Warn(ctx, "batch rejected", logger.String("source", b.Source))
					}
				}
			}()
		}
	feed:
		for _, b := range bs {
			select {
			case <-ctx.Done():
				break feed
			case ch <- b:
			}
		}
		close(ch)
		wg.Wait()
	}

	originals := len(batches) - cfg.Duplicates
	upload(batches[:originals])
	upload(batches[originals:])

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())

	logger.Get().Info(ctx, "batch submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))
}

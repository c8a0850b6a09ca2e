package loadtest

import (
	"errors"
	"time"
)

// ErrInvalidConfig is returned when a Config cannot drive a run.
var ErrInvalidConfig = errors.New("invalid load test config")

// Config holds configuration for a load test against a running service.
type Config struct {
	BaseURL      string        // Base URL of the service
	Batches      int           // Distinct results files to generate
	Seeds        int           // Seeds per (algorithm, objective, board) in each batch
	Duplicates   int           // Batches resubmitted verbatim to exercise dedupe
	Workers      int           // Concurrent uploaders
	Timeout      time.Duration // HTTP request timeout
	Wait         time.Duration // How long to wait for the service to drain
	PollInterval time.Duration // Poll period while waiting
}

// DefaultConfig returns settings for a short local run.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:9080",
		Batches:      8,
		Seeds:        10,
		Duplicates:   2,
		Workers:      4,
		Timeout:      30 * time.Second,
		Wait:         time.Minute,
		PollInterval: 250 * time.Millisecond,
	}
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url is required"))
	case c.Batches < 1:
		return errors.Join(ErrInvalidConfig, errors.New("batches must be positive"))
	case c.Seeds < 1:
		return errors.Join(ErrInvalidConfig, errors.New("seeds must be positive"))
	case c.Duplicates < 0 || c.Duplicates > c.Batches:
		return errors.Join(ErrInvalidConfig, errors.New("duplicates must be within [0, batches]"))
	case c.Workers < 1:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.PollInterval <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("poll interval must be positive"))
	}
	return nil
}

// Stats holds load test statistics.
type Stats struct {
	BatchesGenerated int
	RunsGenerated    int
	Submitted        int
	Accepted         int
	Duplicate        int
	Failed           int
	Processed        int
	SummaryRows      int
	ParetoRows       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

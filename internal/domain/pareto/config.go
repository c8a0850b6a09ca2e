package pareto

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/minestats/internal/domain/model"
)

// Direction says which way a metric improves.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

func (d Direction) String() string {
	if d == Minimize {
		return "minimize"
	}
	return "maximize"
}

// ParseDirection accepts maximize/max/higher and minimize/min/lower.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "maximize", "max", "higher":
		return Maximize, nil
	case "minimize", "min", "lower":
		return Minimize, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MissingPolicy decides what a null metric is replaced with before
// dominance comparison.
type MissingPolicy int

const (
	// Pessimistic replaces a null with the worst value for its direction:
	// -Inf when maximizing, +Inf when minimizing. A row with missing data
	// can then never dominate on that metric.
	Pessimistic MissingPolicy = iota
)

// MissingValues is the policy applied by Front.
const MissingValues = Pessimistic

// worst is the substitute for a null under the Pessimistic policy.
func (p MissingPolicy) worst(d Direction) float64 {
	if d == Minimize {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// Objective is one tracked metric with its direction.
type Objective struct {
	Metric    string
	Direction Direction
}

// Config is the ordered set of tracked metrics.
type Config struct {
	Objectives []Objective
}

// Metrics lists the recognized metric names in canonical order.
var Metrics = []string{
	model.MetricSuccessRatio,
	model.MetricAvgTimePerClickMs,
	model.MetricAvgClicks,
	model.MetricAvgGuesses,
	model.MetricAvgCompletion,
}

// DefaultConfig maximizes success and completion and minimizes time per
// click, clicks and guesses.
func DefaultConfig() Config {
	return Config{Objectives: []Objective{
		{Metric: model.MetricSuccessRatio, Direction: Maximize},
		{Metric: model.MetricAvgTimePerClickMs, Direction: Minimize},
		{Metric: model.MetricAvgClicks, Direction: Minimize},
		{Metric: model.MetricAvgGuesses, Direction: Minimize},
		{Metric: model.MetricAvgCompletion, Direction: Maximize},
	}}
}

// ParseConfig overrides the default directions with a metric -> direction
// mapping. Metrics it does not name keep their default direction, so the
// result always tracks all five metrics in canonical order.
func ParseConfig(directions map[string]string) (Config, error) {
	names := make([]string, 0, len(directions))
	for name := range directions {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !slices.Contains(Metrics, name) {
			return Config{}, &ConfigError{Metric: name, Reason: "unknown metric"}
		}
	}

	cfg := DefaultConfig()
	for i, o := range cfg.Objectives {
		raw, ok := directions[o.Metric]
		if !ok {
			continue
		}
		d, err := ParseDirection(raw)
		if err != nil {
			return Config{}, &ConfigError{Metric: o.Metric, Reason: err.Error()}
		}
		cfg.Objectives[i].Direction = d
	}
	return cfg, cfg.Validate()
}

// ParseSpec parses "metric=direction,..." as used on the command line.
func ParseSpec(spec string) (Config, error) {
	directions := make(map[string]string)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, dir, ok := strings.Cut(part, "=")
		if !ok {
			return Config{}, &ConfigError{Metric: part, Reason: "expected metric=direction"}
		}
		name = strings.TrimSpace(name)
		if _, dup := directions[name]; dup {
			return Config{}, &ConfigError{Metric: name, Reason: "listed twice"}
		}
		directions[name] = dir
	}
	return ParseConfig(directions)
}

// Validate checks the config is a non-empty, duplicate-free subset of the
// recognized metrics. Configs built by hand may track fewer than five.
func (c Config) Validate() error {
	if len(c.Objectives) == 0 {
		return &ConfigError{Reason: "no metrics configured"}
	}
	seen := make(map[string]bool, len(c.Objectives))
	for _, o := range c.Objectives {
		if !slices.Contains(Metrics, o.Metric) {
			return &ConfigError{Metric: o.Metric, Reason: "unknown metric"}
		}
		if seen[o.Metric] {
			return &ConfigError{Metric: o.Metric, Reason: "listed twice"}
		}
		if o.Direction != Maximize && o.Direction != Minimize {
			return &ConfigError{Metric: o.Metric, Reason: "invalid direction"}
		}
		seen[o.Metric] = true
	}
	return nil
}

// Directions renders the config as a metric -> direction mapping.
func (c Config) Directions() map[string]string {
	out := make(map[string]string, len(c.Objectives))
	for _, o := range c.Objectives {
		out[o.Metric] = o.Direction.String()
	}
	return out
}

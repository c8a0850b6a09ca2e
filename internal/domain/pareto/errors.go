package pareto

import (
	"errors"
	"fmt"
)

// Sentinel kinds for Pareto configuration errors.
var (
	ErrConfig = errors.New("pareto config error")
)

// ConfigError reports an unusable metric configuration.
type ConfigError struct {
	Metric string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Metric == "" {
		return fmt.Sprintf("pareto config: %s", e.Reason)
	}
	return fmt.Sprintf("pareto config: metric %q: %s", e.Metric, e.Reason)
}

// Is matches ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

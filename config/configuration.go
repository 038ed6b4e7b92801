package config

import (
	"runtime"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SmithConfiguration configures the orchestrator.
type SmithConfiguration struct {
	// MaxConcurrentRuns bounds the number of workflow runs in flight at any
	// one time across the whole process. Zero means unbounded.
	MaxConcurrentRuns int `mapstructure:"max_concurrent_runs"`
	// FoundryPoolSize bounds the number of reusable execution contexts kept
	// between runs. Zero means no pooling.
	FoundryPoolSize int `mapstructure:"foundry_pool_size"`
	// StrictCompensation returns compensation failures to the caller bundled
	// with the original failure instead of swallowing and logging them.
	StrictCompensation bool `mapstructure:"strict_compensation"`
}

func (cfg *SmithConfiguration) Validate() error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.MaxConcurrentRuns, validation.Min(0)),
		validation.Field(&cfg.FoundryPoolSize, validation.Min(0)),
	)
}

// DefaultSmithConfiguration returns the default orchestrator configuration:
// unbounded runs and a pool sized at twice the available parallelism.
func DefaultSmithConfiguration() *SmithConfiguration {
	return &SmithConfiguration{
		MaxConcurrentRuns: 0,
		FoundryPoolSize:   2 * runtime.GOMAXPROCS(0),
	}
}

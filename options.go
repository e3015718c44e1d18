package hako

import "github.com/rs/zerolog"

const defaultInitialCapacity = 1024

type worldConfig struct {
	logger          zerolog.Logger
	initialCapacity int
}

func defaultWorldConfig() worldConfig {
	return worldConfig{
		logger:          zerolog.Nop(),
		initialCapacity: defaultInitialCapacity,
	}
}

// WorldOption configures NewWorld.
type WorldOption func(*worldConfig)

// WithLogger sets the logger the World reports archetype creation, handle
// registration and command replay to. The default discards everything.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(cfg *worldConfig) {
		cfg.logger = logger
	}
}

// WithInitialCapacity preallocates entity bookkeeping for n entities.
func WithInitialCapacity(n int) WorldOption {
	return func(cfg *worldConfig) {
		if n > 0 {
			cfg.initialCapacity = n
		}
	}
}

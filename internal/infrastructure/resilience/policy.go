package resilience

import "time"

// Config tunes the circuit breakers of a Guard.
type Config struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		MinRequests:      10,
		FailureRatio:     0.5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MinRequests == 0 {
		out.MinRequests = def.MinRequests
	}
	if out.FailureRatio <= 0 || out.FailureRatio > 1 {
		out.FailureRatio = def.FailureRatio
	}
	if out.OpenTimeout <= 0 {
		out.OpenTimeout = def.OpenTimeout
	}
	if out.HalfOpenMaxCalls == 0 {
		out.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}

	return out
}

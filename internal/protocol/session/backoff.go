package session

import (
	"math"
	"math/rand"
	"time"
)

// NextBackoffDelay is the wait before reconnect attempt N (1-based) after a
// failed dial or a dropped course socket. Attempts below 1 count as the
// first. The delay grows by Multiplier per attempt and never exceeds
// MaxDelay. With Jitter it is scaled into [0.5, 1.5); a nil rng leaves it
// unscaled.
func NextBackoffDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if cfg.InitialDelay <= 0 {
		return 0
	}
	attempt = max(attempt, 1)
	growth := max(cfg.Multiplier, 1.0)

	delay := float64(cfg.InitialDelay) * math.Pow(growth, float64(attempt-1))
	if cfg.MaxDelay > 0 {
		delay = min(delay, float64(cfg.MaxDelay))
	}
	if cfg.Jitter && rng != nil {
		delay *= 0.5 + rng.Float64()
	}
	return time.Duration(delay)
}

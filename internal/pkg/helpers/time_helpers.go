package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration turns a config duration string (pool lifetimes, timeouts)
// into a time.Duration, falling back to the default when the value is empty
// or malformed. An empty value is a normal unset config key and stays quiet;
// a malformed one is worth a warning.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}

	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).
			Str("value", durationStr).
			Dur("default", defaultDuration).
			Msg("Invalid duration in configuration, using default")
		return defaultDuration
	}

	return duration
}

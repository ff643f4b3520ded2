package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger returns the process logger tagged with a component name. Call it
// after logging.Configure so the configured writer is inherited.
func Logger(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

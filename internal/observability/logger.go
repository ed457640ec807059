// Package observability holds the Prometheus collectors and log helpers
// shared by nodes and the hub.
package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NodeLogger returns the global logger tagged with a node id.
func NodeLogger(node string) zerolog.Logger {
	return log.With().Str("node", node).Logger()
}

// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/monologreader/pkg/logging"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves src until ctx is cancelled
	StartServer(ctx context.Context, src RecordSource, config ServerConfig, logger *logging.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}

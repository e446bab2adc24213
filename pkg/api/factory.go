// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/monologreader/pkg/logging"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with metrics on the default registry
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	src RecordSource,
	config ServerConfig,
	logger *logging.Logger,
) error {
	return StartServer(ctx, src, config, NewMetrics(prometheus.DefaultRegisterer), logger)
}

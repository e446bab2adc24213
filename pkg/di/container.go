// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/monologreader/pkg/api" //nolint:depguard
	"github.com/ssargent/monologreader/pkg/reader"
)

// ReaderOpener opens a log file for reading
type ReaderOpener func(path string, opts ...reader.Option) (*reader.LogReader, error)

// Container holds all the dependencies for the application
type Container struct {
	readerOpener  ReaderOpener
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		readerOpener:  reader.Open,
		serverFactory: api.NewServerFactory(),
	}
}

// GetReaderOpener returns the function used to open log files
func (c *Container) GetReaderOpener() ReaderOpener {
	return c.readerOpener
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetReaderOpener allows overriding how log files are opened (for testing)
func (c *Container) SetReaderOpener(opener ReaderOpener) {
	c.readerOpener = opener
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

package vdesk

import (
	"context"

	"github.com/bft-labs/vdesk/pkg/log"
)

// Plugin extends a Keeper. Plugins are initialized in registration order when
// the keeper starts and shut down in reverse order when it stops.
type Plugin interface {
	// Name returns the plugin identifier.
	Name() string

	// Initialize starts the plugin. ctx is canceled when the keeper stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown releases the plugin's resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin gets to work with.
type PluginConfig struct {
	// ConfigPath is the configuration file the keeper was started from.
	// Empty when running without a file.
	ConfigPath string

	Keeper *Keeper
	Logger log.Logger
}

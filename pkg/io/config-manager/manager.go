// Package configmanager defines the contract shared by configuration loaders.
package configmanager

import (
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
)

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// Timer enables timing output in notifications when provided.
	Timer timer.Timer
	// Silent suppresses loading notifications.
	Silent bool
	// IgnoreConfigFile skips on-disk config files (defaults, env and flags only).
	IgnoreConfigFile bool
}

// ConfigManager loads a configuration of type T.
type ConfigManager[T any] interface {
	// Load returns the configuration, loading it on first use.
	Load(opts LoadOptions) (*T, error)
}

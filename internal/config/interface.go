package config

import (
	"context"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from path and applies it on top of base. Fields
	// the file does not mention keep their base values.
	Load(ctx context.Context, path string, base *Model) (*Model, error)
}

package app

import (
	"errors"
	"time"

	"github.com/specialistvlad/graphvisgo/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	EdgesPath  string // text file with one "LEFT->RIGHT" edge per line
	ConfigPath string // optional HCL file

	Once      bool
	LogFormat string
	LogLevel  string

	Overrides Overrides
}

// Overrides are command-line values that take precedence over the config
// file. Nil fields are left alone.
type Overrides struct {
	Output      *string
	Settle      *time.Duration
	Renderer    *string
	Background  *string
	ControlPort *int
	SocketIOURL *string
	Disabled    []string
}

// Apply writes the set overrides into m.
func (o Overrides) Apply(m *config.Model) {
	if o.Output != nil {
		m.Output.Path = *o.Output
	}
	if o.Settle != nil {
		m.Scheduler.Settle = *o.Settle
	}
	if o.Renderer != nil {
		m.Renderer.Command = *o.Renderer
	}
	if o.Background != nil {
		m.Renderer.Background = *o.Background
	}
	if o.ControlPort != nil {
		m.Control.Port = *o.ControlPort
	}
	if o.SocketIOURL != nil {
		m.SocketIO.URL = *o.SocketIOURL
	}
	if len(o.Disabled) > 0 {
		m.Vertices.Disabled = append(m.Vertices.Disabled, o.Disabled...)
	}
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.EdgesPath == "" {
		return nil, errors.New("EdgesPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}

package config

import (
	"time"

	"github.com/specialistvlad/graphvisgo/internal/renderer"
	"github.com/specialistvlad/graphvisgo/internal/scheduler"
)

// Model is the unified, format-agnostic representation of the application
// configuration.
type Model struct {
	Renderer  Renderer
	Scheduler Scheduler
	Output    Output
	SocketIO  SocketIO
	Control   Control
	Vertices  Vertices
}

// Renderer selects the external diagram renderer.
type Renderer struct {
	Command    string   `validate:"required"`
	Args       []string `validate:"dive,required"`
	Background string   `validate:"oneof=light dark transparent white"`
}

// Scheduler tunes the render pipeline.
type Scheduler struct {
	Settle time.Duration `validate:"gt=0"`
}

// Output is where the latest diagram is published. Empty disables the file
// surface.
type Output struct {
	Path string
}

// SocketIO configures the optional remote viewer. An empty URL disables it.
type SocketIO struct {
	URL                string `validate:"omitempty,url"`
	Namespace          string
	InsecureSkipVerify bool
}

// Control configures the HTTP control API. Port 0 disables it.
type Control struct {
	Port int `validate:"gte=0,lte=65535"`
}

// Vertices lists labels to disable as soon as each appears in the graph.
type Vertices struct {
	Disabled []string `validate:"dive,required"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Model {
	return &Model{
		Renderer: Renderer{
			Command:    renderer.DefaultCommand,
			Background: renderer.DefaultBackground,
		},
		Scheduler: Scheduler{Settle: scheduler.DefaultSettle},
	}
}

package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/graphvisgo/internal/config"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the variables exposed as `env`. Defaults to os.Environ.
	Environ func() []string

	converter *Converter
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ, converter: NewConverter()}
}

var _ config.Loader = (*Loader)(nil)

// fileRoot decodes all top-level blocks of a configuration file.
type fileRoot struct {
	Renderer  *RendererBlock  `hcl:"renderer,block"`
	Scheduler *SchedulerBlock `hcl:"scheduler,block"`
	Output    *OutputBlock    `hcl:"output,block"`
	SocketIO  *SocketIOBlock  `hcl:"socketio,block"`
	Control   *ControlBlock   `hcl:"control,block"`
	Vertices  *VerticesBlock  `hcl:"vertices,block"`
}

// Load parses the HCL file at path and applies it on top of base. An empty
// path returns a copy of base.
func (l *Loader) Load(ctx context.Context, path string, base *config.Model) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := clone(base)
	if path == "" {
		return model, nil
	}
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	converter := l.converter
	if converter == nil {
		converter = NewConverter()
	}
	evalCtx, err := converter.EvalContext(environ())
	if err != nil {
		return nil, err
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if err := root.apply(ctx, evalCtx, model); err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}

	logger.Debug("HCL loading complete.", "path", path)
	return model, nil
}

func clone(base *config.Model) *config.Model {
	if base == nil {
		return config.Default()
	}
	m := *base
	m.Renderer.Args = slices.Clone(base.Renderer.Args)
	m.Vertices.Disabled = slices.Clone(base.Vertices.Disabled)
	return &m
}

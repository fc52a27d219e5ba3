package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/graphvisgo/internal/config"
)

// RendererBlock is the `renderer` block.
type RendererBlock struct {
	Command    hcl.Expression `hcl:"command,optional"`
	Args       hcl.Expression `hcl:"args,optional"`
	Background hcl.Expression `hcl:"background,optional"`
}

// SchedulerBlock is the `scheduler` block.
type SchedulerBlock struct {
	Settle hcl.Expression `hcl:"settle,optional"`
}

// OutputBlock is the `output` block.
type OutputBlock struct {
	Path hcl.Expression `hcl:"path,optional"`
}

// SocketIOBlock is the `socketio` block.
type SocketIOBlock struct {
	URL                hcl.Expression `hcl:"url,optional"`
	Namespace          hcl.Expression `hcl:"namespace,optional"`
	InsecureSkipVerify hcl.Expression `hcl:"insecure_skip_verify,optional"`
}

// ControlBlock is the `control` block.
type ControlBlock struct {
	Port hcl.Expression `hcl:"port,optional"`
}

// VerticesBlock is the `vertices` block.
type VerticesBlock struct {
	Disabled hcl.Expression `hcl:"disabled,optional"`
}

// attr pairs an expression with the field it decodes into.
type attr struct {
	name   string
	expr   hcl.Expression
	target any
}

func (r *fileRoot) apply(ctx context.Context, evalCtx *hcl.EvalContext, m *config.Model) error {
	var attrs []attr
	if b := r.Renderer; b != nil {
		attrs = append(attrs,
			attr{"renderer.command", b.Command, &m.Renderer.Command},
			attr{"renderer.args", b.Args, &m.Renderer.Args},
			attr{"renderer.background", b.Background, &m.Renderer.Background},
		)
	}
	if b := r.Output; b != nil {
		attrs = append(attrs, attr{"output.path", b.Path, &m.Output.Path})
	}
	if b := r.SocketIO; b != nil {
		attrs = append(attrs,
			attr{"socketio.url", b.URL, &m.SocketIO.URL},
			attr{"socketio.namespace", b.Namespace, &m.SocketIO.Namespace},
			attr{"socketio.insecure_skip_verify", b.InsecureSkipVerify, &m.SocketIO.InsecureSkipVerify},
		)
	}
	if b := r.Control; b != nil {
		attrs = append(attrs, attr{"control.port", b.Port, &m.Control.Port})
	}
	if b := r.Vertices; b != nil {
		attrs = append(attrs, attr{"vertices.disabled", b.Disabled, &m.Vertices.Disabled})
	}

	for _, a := range attrs {
		if err := decodeAttr(ctx, a.expr, a.name, evalCtx, a.target); err != nil {
			return err
		}
	}

	if b := r.Scheduler; b != nil {
		if err := decodeDuration(ctx, b.Settle, "scheduler.settle", evalCtx, &m.Scheduler.Settle); err != nil {
			return err
		}
	}
	return nil
}

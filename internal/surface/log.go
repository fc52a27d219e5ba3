package surface

import (
	"context"

	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
)

// Log reports results through the context logger. Render failures are logged
// at error level; this is the user-visible notification on a terminal.
type Log struct {
	// Output is the published image location, if any, for the success record.
	Output string
}

// ShowImage logs the successful render.
func (l *Log) ShowImage(ctx context.Context, img Image) error {
	attrs := []any{"task_id", img.TaskID, "edges", img.Edges, "width", img.Width, "height", img.Height}
	if l.Output != "" {
		attrs = append(attrs, "output", l.Output)
	}
	ctxlog.FromContext(ctx).Info("🖼️ Diagram updated.", attrs...)
	return nil
}

// ShowError logs the failure message.
func (l *Log) ShowError(ctx context.Context, message string) {
	ctxlog.FromContext(ctx).Error(message)
}

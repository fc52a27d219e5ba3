package surface

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
)

// File publishes every rendered diagram to a fixed path. The file is replaced
// atomically so viewers never observe a partially written image.
type File struct {
	Path string
}

// ShowImage copies the rendered image to f.Path.
func (f *File) ShowImage(ctx context.Context, img Image) error {
	src, err := os.Open(img.Path)
	if err != nil {
		return fmt.Errorf("failed to open rendered image: %w", err)
	}
	defer src.Close()

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to publish output file: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Diagram written.", "path", f.Path, "task_id", img.TaskID)
	return nil
}

// ShowError keeps the previous image in place.
func (f *File) ShowError(context.Context, string) {}

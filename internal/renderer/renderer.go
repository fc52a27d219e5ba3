// Package renderer defines the diagram renderer collaborator and its Mermaid
// CLI implementation. A renderer is opaque, long-running and synchronous from
// the caller's point of view: Render returns once the output image exists, the
// process failed, or ctx was cancelled and the process was killed.
package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
)

// DefaultCommand is the Mermaid CLI binary name.
const DefaultCommand = "mmdc"

// DefaultBackground is the background-color mode passed to the renderer.
const DefaultBackground = "light"

// ErrNoOutput is returned when the renderer exits cleanly but did not write
// the requested image.
var ErrNoOutput = errors.New("renderer: no output image produced")

// Request describes a single render.
type Request struct {
	InputPath  string
	OutputPath string
	Width      int
	Height     int
	Background string
}

// Renderer turns a diagram source file into a raster image.
type Renderer interface {
	Render(ctx context.Context, req Request) error
}

// Func adapts a function to the Renderer interface.
type Func func(ctx context.Context, req Request) error

// Render implements Renderer.
func (f Func) Render(ctx context.Context, req Request) error { return f(ctx, req) }

// ExitError reports a renderer process that exited with a non-zero code.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("renderer exited with code %d", e.Code)
	}
	return fmt.Sprintf("renderer exited with code %d: %s", e.Code, msg)
}

// MermaidCLI runs the Mermaid command line tool as an external process.
type MermaidCLI struct {
	// Command is the executable to run, DefaultCommand when empty.
	Command string
	// Args are prepended to the generated -i/-o/-b/-w/-H arguments.
	Args []string
	// WaitDelay bounds how long Render waits for I/O after a kill.
	WaitDelay time.Duration
}

// Render runs the renderer and waits for it. On ctx cancellation the process
// is killed and ctx.Err() is returned once it has been reaped.
func (m *MermaidCLI) Render(ctx context.Context, req Request) error {
	logger := ctxlog.FromContext(ctx)

	command := m.Command
	if command == "" {
		command = DefaultCommand
	}
	background := req.Background
	if background == "" {
		background = DefaultBackground
	}

	args := append(slices.Clone(m.Args),
		"-i", req.InputPath,
		"-o", req.OutputPath,
		"-b", background,
		"-w", strconv.Itoa(req.Width),
		"-H", strconv.Itoa(req.Height),
	)

	cmd := exec.CommandContext(ctx, command, args...)
	killProcessGroup(cmd)
	cmd.WaitDelay = m.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 2 * time.Second
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start renderer %q: %w", command, err)
	}
	logger.Debug("Renderer process started.", "pid", cmd.Process.Pid, "width", req.Width, "height", req.Height)

	err := cmd.Wait()
	if ctx.Err() != nil {
		logger.Debug("Renderer process killed.", "pid", cmd.Process.Pid)
		return ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("renderer %q failed: %w", command, err)
	}

	if _, err := os.Stat(req.OutputPath); err != nil {
		return fmt.Errorf("%w: %s", ErrNoOutput, req.OutputPath)
	}
	return nil
}

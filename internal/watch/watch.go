// Package watch feeds the contents of an edited text file into the graph
// model every time the file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
)

// TextFunc receives the full text of the watched file.
type TextFunc func(text string)

// Watcher reports the contents of one file whenever it changes. The parent
// directory is watched so editors that save by rename are followed.
type Watcher struct {
	path   string
	onText TextFunc

	last    string
	hasLast bool
}

// New creates a watcher for path.
func New(path string, onText TextFunc) *Watcher {
	return &Watcher{path: path, onText: onText}
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Run reports the current contents and then every change until ctx is done.
// A missing file reads as empty text.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("path", w.path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	logger.Info("👀 Watching graph file.")

	w.reload(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("File watcher stopped.")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("Graph file event.", "op", event.Op.String())
				w.reload(ctx)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}

// reload reads the file and reports it if the text differs from the last
// report.
func (w *Watcher) reload(ctx context.Context) {
	text, err := readText(w.path)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to read graph file.", "path", w.path, "error", err)
		return
	}
	if w.hasLast && text == w.last {
		return
	}
	w.last, w.hasLast = text, true
	w.onText(text)
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

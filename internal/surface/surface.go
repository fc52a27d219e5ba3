// Package surface implements the display surfaces that receive render
// results: an output image file, log notifications, a socket.io viewer, and a
// fan-out over several of them.
//
// Surfaces are called on the presentation loop. ShowImage must consume the
// image synchronously: the file at Image.Path is deleted as soon as it returns.
package surface

import (
	"context"
	"errors"
)

// Image describes a successfully rendered diagram.
type Image struct {
	TaskID string
	Path   string
	Width  int
	Height int
	Edges  int
}

// Surface receives render results.
type Surface interface {
	ShowImage(ctx context.Context, img Image) error
	ShowError(ctx context.Context, message string)
}

// Multi fans results out to every surface in order.
type Multi []Surface

// ShowImage delivers img to every surface and joins their errors.
func (m Multi) ShowImage(ctx context.Context, img Image) error {
	var errs []error
	for _, s := range m {
		if err := s.ShowImage(ctx, img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ShowError notifies every surface.
func (m Multi) ShowError(ctx context.Context, message string) {
	for _, s := range m {
		s.ShowError(ctx, message)
	}
}

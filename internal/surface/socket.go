package surface

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Socket.io event names.
const (
	EventDiagram      = "diagram"
	EventDiagramError = "diagram_error"
	EventVertexStatus = "vertex_status"
)

// DefaultConnectTimeout bounds the wait for the initial socket.io handshake.
const DefaultConnectTimeout = 15 * time.Second

// ErrNotConnected is returned when a diagram cannot be pushed because the
// viewer connection is down.
var ErrNotConnected = errors.New("socket.io viewer is not connected")

// SocketConfig holds the connection settings of a socket.io viewer.
type SocketConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// StatusFunc handles an enable/disable request arriving from the viewer.
type StatusFunc func(label string, enabled bool)

// Socket pushes diagrams to a remote viewer over socket.io and forwards the
// viewer's vertex_status requests to onStatus.
type Socket struct {
	io *socket.Socket
}

// DialSocket connects to the viewer and waits for the handshake to finish.
func DialSocket(ctx context.Context, cfg SocketConfig, onStatus StatusFunc) (*Socket, error) {
	logger := ctxlog.FromContext(ctx).With("surface", "socketio", "url", cfg.URL)
	logger.Info("Connecting to viewer...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to viewer.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", errs[0])
			}
		}
		connectChan <- err
	})
	io.On(types.EventName(EventVertexStatus), func(data ...any) {
		label, enabled, ok := parseVertexStatus(data...)
		if !ok {
			logger.Warn("Ignoring malformed vertex_status event.", "data", data)
			return
		}
		if onStatus != nil {
			onStatus(label, enabled)
		}
	})

	io.Connect()

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Socket{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// ShowImage emits the diagram event with the PNG inlined as base64.
func (s *Socket) ShowImage(ctx context.Context, img Image) error {
	if !s.io.Connected() {
		return ErrNotConnected
	}
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return fmt.Errorf("failed to read rendered image: %w", err)
	}
	if err := s.io.Emit(EventDiagram, diagramPayload(img, data)); err != nil {
		return fmt.Errorf("failed to emit %s: %w", EventDiagram, err)
	}
	ctxlog.FromContext(ctx).Debug("Diagram pushed to viewer.", "task_id", img.TaskID, "bytes", len(data))
	return nil
}

// ShowError emits the diagram_error event.
func (s *Socket) ShowError(ctx context.Context, message string) {
	if !s.io.Connected() {
		return
	}
	if err := s.io.Emit(EventDiagramError, map[string]any{"message": message}); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to emit diagram error.", "error", err)
	}
}

// Close disconnects from the viewer.
func (s *Socket) Close() {
	s.io.Disconnect()
}

func diagramPayload(img Image, png []byte) map[string]any {
	return map[string]any{
		"task_id":    img.TaskID,
		"width":      img.Width,
		"height":     img.Height,
		"edges":      img.Edges,
		"png_base64": base64.StdEncoding.EncodeToString(png),
	}
}

// parseVertexStatus accepts {"label": "A", "enabled": false}.
func parseVertexStatus(data ...any) (string, bool, bool) {
	if len(data) == 0 {
		return "", false, false
	}
	m, ok := data[0].(map[string]any)
	if !ok {
		return "", false, false
	}
	label, ok := m["label"].(string)
	if !ok || label == "" {
		return "", false, false
	}
	enabled, ok := m["enabled"].(bool)
	if !ok {
		return "", false, false
	}
	return label, enabled, true
}

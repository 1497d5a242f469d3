package progress

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOConfig locates the socket.io server receiving progress events.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// TileEvents also emits one event per finished tile.
	TileEvents bool
}

// SocketIOReporter emits events to a socket.io server.
type SocketIOReporter struct {
	io    *socket.Socket
	event string
	tiles bool
}

// DialSocketIO connects to the server and waits for the namespace to be
// joined.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIOReporter, error) {
	logger := ctxlog.FromContext(ctx).With("reporter", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if cfg.Event == "" {
		cfg.Event = "progress"
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
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
		logger.Info("Connected progress reporter.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIOReporter{io: io, event: cfg.Event, tiles: cfg.TileEvents}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(cfg.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", cfg.Timeout)
	}
}

// payload is the JSON object sent with every event.
func payload(stage string, ev Event) map[string]any {
	return map[string]any{
		"stage":       stage,
		"run_id":      ev.RunID,
		"operation":   ev.Operation,
		"kind":        ev.Kind,
		"tile":        ev.Tile,
		"done":        ev.Done,
		"tiles":       ev.Tiles,
		"duration_ms": ev.Duration.Milliseconds(),
	}
}

func (r *SocketIOReporter) OperationStarted(_ context.Context, ev Event) {
	r.io.Emit(r.event, payload("operation_started", ev))
}

func (r *SocketIOReporter) TileDone(_ context.Context, ev Event) {
	if r.tiles {
		r.io.Emit(r.event, payload("tile_done", ev))
	}
}

func (r *SocketIOReporter) OperationDone(_ context.Context, ev Event) {
	r.io.Emit(r.event, payload("operation_done", ev))
}

// Close disconnects from the server.
func (r *SocketIOReporter) Close() error {
	r.io.Disconnect()
	return nil
}

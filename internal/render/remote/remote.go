// Package remote streams frames to a socket.io server, for browser based
// virtual panels or a panel attached to another machine.
package remote

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"led-life/internal/ctxlog"
	"led-life/internal/render"
)

// ErrDisconnected is returned by Present while the socket is not connected.
var ErrDisconnected = errors.New("socket.io connection lost")

// Config controls the remote backend.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		URL:       "http://localhost:3000/socket.io/",
		Namespace: "/",
		Event:     "frame",
		Timeout:   15 * time.Second,
	}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["url"]; ok && v != "" {
		c.URL = v
	}
	if v, ok := cfg["namespace"]; ok && v != "" {
		c.Namespace = v
	}
	if v, ok := cfg["event"]; ok && v != "" {
		c.Event = v
	}
	if v, ok := cfg["timeout"]; ok {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			c.Timeout = parsed
		}
	}
	if v, ok := cfg["insecure_skip_verify"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.InsecureSkipVerify = parsed
		}
	}
	return c
}

// Frame is the payload emitted for every generation. RGB holds the pixels
// row-major as base64-encoded r, g, b triplets.
type Frame struct {
	Generation int    `json:"generation"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RGB        string `json:"rgb"`
}

func newFrame(generation int, fb *render.FrameBuffer) Frame {
	return Frame{
		Generation: generation,
		Width:      fb.W,
		Height:     fb.H,
		RGB:        base64.StdEncoding.EncodeToString(fb.RGB()),
	}
}

// Panel buffers a frame and emits it on Present.
type Panel struct {
	*render.FrameBuffer
	cfg       Config
	io        *socket.Socket
	connected atomic.Bool
}

// Dial connects to the socket.io server and waits for the connection.
func Dial(ctx context.Context, size render.Size, cfg Config) (*Panel, error) {
	logger := ctxlog.FromContext(ctx).With("backend", "remote", "url", cfg.URL)

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

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	p := &Panel{FrameBuffer: render.NewFrameBuffer(size.W, size.H), cfg: cfg, io: io}
	connectChan := make(chan error, 1)

	// Handlers stay registered so automatic reconnects restore the flag.
	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		p.connected.Store(true)
		signal(connectChan, nil)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Warn("Connection attempt failed", "error", err)
		signal(connectChan, err)
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		p.connected.Store(false)
		logger.Warn("Disconnected", "reason", reason)
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return p, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(cfg.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", cfg.Timeout)
	}
}

// signal reports the first connection result and drops later ones.
func signal(ch chan error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// Present emits the buffered frame. It fails while the socket is
// disconnected and succeeds again once the client has reconnected.
func (p *Panel) Present(generation int) error {
	if !p.connected.Load() {
		return ErrDisconnected
	}
	p.io.Emit(p.cfg.Event, newFrame(generation, p.FrameBuffer))
	return nil
}

// Close disconnects from the server.
func (p *Panel) Close() error {
	p.io.Disconnect()
	return nil
}

func init() {
	render.Register("remote", func(ctx context.Context, size render.Size, opts map[string]string) (render.Panel, error) {
		return Dial(ctx, size, FromMap(opts))
	})
}

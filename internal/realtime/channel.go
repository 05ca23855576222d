// Package realtime keeps a WebSocket connection to the backend's event relay
// open and routes named events to registered callbacks.
//
// Frames are JSON objects {"event": "<name>", "data": <any>}. A string data
// value is delivered unquoted; anything else is delivered as raw JSON text.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the relay.
	writeWait = 10 * time.Second

	// Maximum frame size accepted from the relay.
	maxMessageSize = 64 * 1024

	defaultPingInterval  = 30 * time.Second
	defaultReconnectBase = time.Second
	defaultReconnectMax  = 30 * time.Second
	backoffFactor        = 1.5
)

// ErrNotConnected is returned by Emit while no connection is open.
var ErrNotConnected = errors.New("realtime channel not connected")

// Frame is the wire envelope.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Options configure a Channel.
type Options struct {
	URL           string
	Header        http.Header
	PingInterval  time.Duration
	ReconnectBase time.Duration
	ReconnectMax  time.Duration
	Dialer        *websocket.Dialer
	Logger        *slog.Logger
}

// Channel is a reconnecting event client. Register callbacks before Run.
type Channel struct {
	opts   Options
	logger *slog.Logger

	mu        sync.RWMutex
	onConnect []func()
	handlers  map[string][]func(payload string)

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// New validates opts and returns an idle Channel.
func New(opts Options) (*Channel, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("realtime url is empty")
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.ReconnectBase <= 0 {
		opts.ReconnectBase = defaultReconnectBase
	}
	if opts.ReconnectMax < opts.ReconnectBase {
		opts.ReconnectMax = max(defaultReconnectMax, opts.ReconnectBase)
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{HandshakeTimeout: writeWait}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Channel{
		opts:     opts,
		logger:   opts.Logger.With("component", "realtime"),
		handlers: make(map[string][]func(string)),
	}, nil
}

// OnConnect registers fn to run after every successful (re)connect, before
// any frame is read. fn may call Emit.
func (c *Channel) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// On registers fn for frames named event. Callbacks run on the read loop and
// must not block.
func (c *Channel) On(event string, fn func(payload string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], fn)
}

// Emit sends one frame on the current connection.
func (c *Channel) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s data: %w", event, err)
	}
	msg, err := json.Marshal(Frame{Event: event, Data: raw})
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", event, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// Connected reports whether a connection is currently open.
func (c *Channel) Connected() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn != nil
}

// Run connects and serves until ctx ends, reconnecting with exponential
// backoff. It always returns ctx.Err().
func (c *Channel) Run(ctx context.Context) error {
	delay := c.opts.ReconnectBase
	for {
		conn, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("realtime connect failed", "url", c.opts.URL, "error", err, "retry_in", delay.String())
		} else {
			delay = c.opts.ReconnectBase
			c.logger.Info("realtime connected", "url", c.opts.URL)
			err = c.serve(ctx, conn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("realtime connection lost", "error", err, "retry_in", delay.String())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = nextBackoff(delay, c.opts.ReconnectMax)
	}
}

func (c *Channel) serve(ctx context.Context, conn *websocket.Conn) error {
	pongWait := c.opts.PingInterval * 10 / 9

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()

	done := make(chan struct{})
	var wg sync.WaitGroup
	defer func() {
		close(done)
		c.writeMu.Lock()
		c.conn = nil
		c.writeMu.Unlock()
		_ = conn.Close()
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(c.opts.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				_ = conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					c.logger.Debug("realtime ping failed", "error", err)
				}
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.mu.RLock()
	hooks := append([]func(){}, c.onConnect...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("realtime read error", "error", err)
			}
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		c.deliver(data)
	}
}

func (c *Channel) deliver(data []byte) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.logger.Debug("realtime frame ignored", "error", err)
		return
	}

	c.mu.RLock()
	fns := c.handlers[f.Event]
	c.mu.RUnlock()
	if len(fns) == 0 {
		c.logger.Debug("realtime event without handler", "event", f.Event)
		return
	}

	payload := payloadText(f.Data)
	for _, fn := range fns {
		fn(payload)
	}
}

func payloadText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	next := time.Duration(float64(cur) * backoffFactor)
	if next > limit {
		return limit
	}
	return next
}

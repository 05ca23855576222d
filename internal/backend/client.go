// Package backend is the REST client for the remote command queue.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

// ErrRejected marks a request the backend answered with a non-2xx status.
var ErrRejected = errors.New("backend rejected request")

const maxErrorBody = 512

// RemoteUser is the enrollment record mirrored to the backend.
type RemoteUser struct {
	Name       string
	UserHash   string
	DeviceHash string
	QueueID    string
}

// TemplateBatch is a set of templates read from one user on one device.
type TemplateBatch struct {
	UserHash   string
	DeviceHash string
	Templates  []device.Template
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
	Durable RetryPolicy
	// HTTPClient overrides the transport; its Timeout is ignored in favour of Timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
	// OnRetry is called before each durable retry.
	OnRetry func(operation string, attempt int, err error)
}

// Client talks to the backend queue service.
type Client struct {
	base    *url.URL
	token   string
	agent   string
	timeout time.Duration
	durable RetryPolicy
	http    *http.Client
	logger  *slog.Logger
	onRetry func(string, int, error)
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base url must be http or https (got %q)", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Durable.Delay < 0 {
		opts.Durable.Delay = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "biobridge"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	onRetry := opts.OnRetry
	if onRetry == nil {
		onRetry = func(string, int, error) {}
	}

	return &Client{
		base:    base,
		token:   opts.Token,
		agent:   opts.UserAgent,
		timeout: opts.Timeout,
		durable: opts.Durable,
		http:    hc,
		logger:  logger.With("component", "backend"),
		onRetry: onRetry,
	}, nil
}

type pendingResponse struct {
	Data []json.RawMessage `json:"data"`
}

// FetchPending returns the commands waiting in the queue. Entries that cannot
// be decoded are skipped and logged.
func (c *Client) FetchPending(ctx context.Context) ([]command.Command, error) {
	body, err := c.do(ctx, http.MethodGet, "/pending-queue", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch pending: %w", err)
	}

	var resp pendingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fetch pending: decode response: %w", err)
	}

	cmds := make([]command.Command, 0, len(resp.Data))
	for i, raw := range resp.Data {
		var cmd command.Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.logger.Warn("skipping undecodable command", "index", i, "error", err)
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// ReportStatus posts a status transition. It is attempted once.
func (c *Client) ReportStatus(ctx context.Context, id string, status command.Status, message string) error {
	form := url.Values{}
	form.Set("status", string(status))
	form.Set("message", message)
	if _, err := c.do(ctx, http.MethodPost, "/queue/update/"+url.PathEscape(id), form); err != nil {
		return fmt.Errorf("report status %s for %s: %w", status, id, err)
	}
	return nil
}

// CreateUserRemote registers a user with the backend. Durable.
func (c *Client) CreateUserRemote(ctx context.Context, u RemoteUser) error {
	form := url.Values{}
	form.Set("name", u.Name)
	form.Set("user_hash", u.UserHash)
	form.Set("device_hash", u.DeviceHash)
	form.Set("que_id", u.QueueID)
	return c.durableCall(ctx, "create_user", http.MethodPost, "/users/create", form)
}

// DeleteUserRemote removes a user from the backend. Durable.
func (c *Client) DeleteUserRemote(ctx context.Context, userHash string) error {
	return c.durableCall(ctx, "delete_user", http.MethodDelete, "/users/delete/"+url.PathEscape(userHash), nil)
}

// SendLogs uploads attendance records.
func (c *Client) SendLogs(ctx context.Context, logs []device.LogEntry) error {
	data, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("encode logs: %w", err)
	}
	form := url.Values{}
	form.Set("data", string(data))
	if _, err := c.do(ctx, http.MethodPost, "/fingerprint-logs/create", form); err != nil {
		return fmt.Errorf("send logs: %w", err)
	}
	return nil
}

// SendFingerTemplates uploads a user's finger templates.
func (c *Client) SendFingerTemplates(ctx context.Context, batch TemplateBatch) error {
	return c.sendTemplates(ctx, "/user-finger/create", batch)
}

// SendFaceTemplates uploads a user's face templates.
func (c *Client) SendFaceTemplates(ctx context.Context, batch TemplateBatch) error {
	return c.sendTemplates(ctx, "/user-face/create", batch)
}

func (c *Client) sendTemplates(ctx context.Context, path string, batch TemplateBatch) error {
	data, err := json.Marshal(batch.Templates)
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}
	form := url.Values{}
	form.Set("user_hash", batch.UserHash)
	form.Set("device_hash", batch.DeviceHash)
	form.Set("data", string(data))
	if _, err := c.do(ctx, http.MethodPost, path, form); err != nil {
		return fmt.Errorf("send templates: %w", err)
	}
	return nil
}

// durableCall repeats a request while it keeps timing out, pausing between
// attempts per the retry policy. Any other failure returns immediately.
func (c *Client) durableCall(ctx context.Context, op, method, path string, form url.Values) error {
	for attempt := 1; ; attempt++ {
		_, err := c.do(ctx, method, path, form)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("durable call succeeded after retry", "operation", op, "attempts", attempt)
			}
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		if !IsTimeout(err) {
			c.logger.Warn("durable call failed", "operation", op, "attempt", attempt, "error", err)
			return fmt.Errorf("%s: %w", op, err)
		}
		if !c.durable.Unbounded() && attempt >= c.durable.MaxAttempts {
			return fmt.Errorf("%s: gave up after %d attempts: %w", op, attempt, err)
		}

		c.onRetry(op, attempt, err)
		wait := c.durable.backoff(attempt)
		c.logger.Warn("durable call timed out, retrying", "operation", op, "attempt", attempt, "retry_in", wait, "error", err)
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
}

// do performs a single attempt bounded by the per-request timeout.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.base.JoinPath(path)
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(actx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.agent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", ErrRejected, method, target.Path, resp.StatusCode, snippet)
	}
	return data, nil
}

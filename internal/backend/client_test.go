package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*Options)) *Client {
	t.Helper()
	opts := Options{
		BaseURL: srv.URL + "/api",
		Token:   "tok",
		Timeout: 2 * time.Second,
		Durable: DefaultRetryPolicy(),
		Logger:  quietLogger(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

// recorder captures requests seen by a test server.
type recorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

type recordedCall struct {
	at     time.Time
	method string
	path   string
	form   map[string]string
	auth   string
}

func (r *recorder) add(req *http.Request) {
	_ = req.ParseForm()
	form := map[string]string{}
	for k := range req.PostForm {
		form[k] = req.PostForm.Get(k)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{
		at:     time.Now(),
		method: req.Method,
		path:   req.URL.Path,
		form:   form,
		auth:   req.Header.Get("Authorization"),
	})
}

func (r *recorder) snapshot() []recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedCall(nil), r.calls...)
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://x"})
	assert.Error(t, err)
}

func TestFetchPending(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		_, _ = io.WriteString(w, `{"data":[
			{"id":1,"task_type":"get_log","task_data":"{\"ip\":\"10.0.0.5\",\"port\":\"4370\"}","status":"pending"},
			{"task_type":"broken"},
			{"id":"2","task_type":"bogus","task_data":{},"status":"pending"}
		]}`)
	}))
	defer srv.Close()

	cmds, err := newTestClient(t, srv, nil).FetchPending(context.Background())
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "1", cmds[0].ID)
	assert.Equal(t, command.KindGetLog, cmds[0].Kind)
	assert.Equal(t, "10.0.0.5", cmds[0].Payload["ip"])
	assert.Equal(t, command.Kind("bogus"), cmds[1].Kind)

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].method)
	assert.Equal(t, "/api/pending-queue", calls[0].path)
	assert.Equal(t, "Bearer tok", calls[0].auth)
}

func TestFetchPendingErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	cmds, err := newTestClient(t, srv, nil).FetchPending(context.Background())
	assert.Error(t, err)
	assert.Nil(t, cmds)

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	_, err = newTestClient(t, down, nil).FetchPending(context.Background())
	assert.Error(t, err)
}

func TestReportStatus(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
	}))
	defer srv.Close()

	err := newTestClient(t, srv, nil).ReportStatus(context.Background(), "42", command.StatusCompleted, "get_log:completed:ok")
	require.NoError(t, err)

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/api/queue/update/42", calls[0].path)
	assert.Equal(t, "completed", calls[0].form["status"])
	assert.Equal(t, "get_log:completed:ok", calls[0].form["message"])
}

func TestReportStatusIsNotRetried(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(o *Options) { o.Timeout = 50 * time.Millisecond })
	err := c.ReportStatus(context.Background(), "1", command.StatusInProgress, "")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Len(t, rec.snapshot(), 1)
}

func TestCreateUserRemoteRetriesTimeouts(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if len(rec.snapshot()) <= 2 {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	var retries []int
	c := newTestClient(t, srv, func(o *Options) {
		o.Timeout = 100 * time.Millisecond
		o.OnRetry = func(op string, attempt int, err error) {
			assert.Equal(t, "create_user", op)
			retries = append(retries, attempt)
		}
	})

	err := c.CreateUserRemote(context.Background(), RemoteUser{Name: "Ada", UserHash: "u1", DeviceHash: "10.0.0.5:4370", QueueID: "42"})
	require.NoError(t, err)

	calls := rec.snapshot()
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].at.Sub(calls[i-1].at), time.Second)
	}
	assert.Equal(t, []int{1, 2}, retries)
	assert.Equal(t, "/api/users/create", calls[2].path)
	assert.Equal(t, map[string]string{"name": "Ada", "user_hash": "u1", "device_hash": "10.0.0.5:4370", "que_id": "42"}, calls[2].form)
}

func TestDurableCallRejectionIsNotRetried(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		http.Error(w, "user_hash taken", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	err := c.CreateUserRemote(context.Background(), RemoteUser{UserHash: "u1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "user_hash taken")

	err = c.DeleteUserRemote(context.Background(), "u1")
	require.ErrorIs(t, err, ErrRejected)

	calls := rec.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodDelete, calls[1].method)
	assert.Equal(t, "/api/users/delete/u1", calls[1].path)
}

func TestDurableCallHonoursMaxAttempts(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(o *Options) {
		o.Timeout = 20 * time.Millisecond
		o.Durable = RetryPolicy{MaxAttempts: 3, Delay: 10 * time.Millisecond, Multiplier: 1}
	})
	err := c.DeleteUserRemote(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
	assert.Len(t, rec.snapshot(), 3)
}

func TestDurableCallStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(o *Options) {
		o.Timeout = 20 * time.Millisecond
		o.Durable = RetryPolicy{Delay: time.Hour, Multiplier: 1}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := c.DeleteUserRemote(ctx, "u1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSendLogsAndTemplates(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, nil)
	ctx := context.Background()

	at := time.Date(2024, 1, 2, 8, 30, 0, 0, time.Local)
	require.NoError(t, c.SendLogs(ctx, []device.LogEntry{{DeviceHash: "d", UserHash: "u1", Time: device.DeviceTime(at)}}))
	require.NoError(t, c.SendFingerTemplates(ctx, TemplateBatch{UserHash: "u1", DeviceHash: "d", Templates: []device.Template{{Index: 1, Data: "abc"}}}))
	require.NoError(t, c.SendFaceTemplates(ctx, TemplateBatch{UserHash: "u1", DeviceHash: "d", Templates: []device.Template{{Index: 0, Data: "face"}}}))

	calls := rec.snapshot()
	require.Len(t, calls, 3)

	assert.Equal(t, "/api/fingerprint-logs/create", calls[0].path)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls[0].form["data"]), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "2024-01-02T08:30:00", logs[0]["dateTime"])

	assert.Equal(t, "/api/user-finger/create", calls[1].path)
	assert.Equal(t, "u1", calls[1].form["user_hash"])
	assert.JSONEq(t, `[{"TemplateIndex":1,"TemplateData":"abc"}]`, calls[1].form["data"])

	assert.Equal(t, "/api/user-face/create", calls[2].path)
	assert.Equal(t, "d", calls[2].form["device_hash"])
}

func TestRetryPolicyBackoff(t *testing.T) {
	fixed := DefaultRetryPolicy()
	assert.True(t, fixed.Unbounded())
	assert.Equal(t, time.Second, fixed.backoff(1))
	assert.Equal(t, time.Second, fixed.backoff(10))

	grow := RetryPolicy{Delay: time.Second, Multiplier: 2, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, grow.backoff(1))
	assert.Equal(t, 2*time.Second, grow.backoff(2))
	assert.Equal(t, 4*time.Second, grow.backoff(3))
	assert.Equal(t, 5*time.Second, grow.backoff(4))
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("boom")))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.False(t, IsTimeout(ErrRejected))
}

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/biobridge/internal/backend"
	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
	"github.com/mattjoyce/biobridge/internal/dispatch"
	"github.com/mattjoyce/biobridge/internal/handler"
	"github.com/mattjoyce/biobridge/internal/journal"
	"github.com/mattjoyce/biobridge/internal/log"
	"github.com/mattjoyce/biobridge/internal/metrics"
	"github.com/mattjoyce/biobridge/internal/realtime"
	"github.com/mattjoyce/biobridge/internal/storage"
)

// fakeBackend serves the REST endpoints the executor calls and records them
// in arrival order.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	logs  string
	queue string
}

func (b *fakeBackend) record(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, s)
}

func (b *fakeBackend) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/pending-queue", func(w http.ResponseWriter, _ *http.Request) {
		b.record("fetch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(b.queue))
	})
	r.Post("/api/queue/update/{id}", func(w http.ResponseWriter, req *http.Request) {
		_ = req.ParseForm()
		b.record("report " + chi.URLParam(req, "id") + " " + req.PostForm.Get("status") + " " + req.PostForm.Get("message"))
	})
	r.Post("/api/fingerprint-logs/create", func(w http.ResponseWriter, req *http.Request) {
		_ = req.ParseForm()
		b.mu.Lock()
		b.logs = req.PostForm.Get("data")
		b.mu.Unlock()
		b.record("send logs")
	})
	return r
}

// wakeRelay accepts the join frame, then pushes the wake sentinel once.
func wakeRelay(t *testing.T, joined chan<- string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var join realtime.Frame
		if err := conn.ReadJSON(&join); err != nil {
			return
		}
		var room string
		_ = json.Unmarshal(join.Data, &room)
		joined <- join.Event + ":" + room

		if err := conn.WriteJSON(realtime.Frame{Event: "zk_message", Data: json.RawMessage(`"start_fetch"`)}); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestWakeToReportsEndToEnd(t *testing.T) {
	fb := &fakeBackend{queue: `{"data":[
		{"id":1,"task_type":"get_log","task_data":"{\"ip\":\"10.0.0.5\",\"port\":\"4370\",\"start_date\":\"2024-01-01\",\"end_date\":\"2024-01-31\"}","status":"pending"},
		{"id":2,"task_type":"bogus","task_data":{},"status":"pending"}
	]}`}
	api := httptest.NewServer(fb.router())
	defer api.Close()

	joined := make(chan string, 1)
	relay := wakeRelay(t, joined)
	defer relay.Close()

	sim := device.NewSimulator()
	sim.RecordAttendance("10.0.0.5:4370", device.LogEntry{
		UserHash: "u1",
		Time:     device.DeviceTime(time.Date(2024, 1, 15, 8, 30, 0, 0, time.Local)),
	})
	sim.RecordAttendance("10.0.0.5:4370", device.LogEntry{
		UserHash: "u2",
		Time:     device.DeviceTime(time.Date(2024, 2, 2, 8, 30, 0, 0, time.Local)),
	})

	m := metrics.New()
	client, err := backend.New(backend.Options{
		BaseURL: api.URL + "/api",
		Timeout: 2 * time.Second,
		Durable: backend.DefaultRetryPolicy(),
		Logger:  log.Get(),
		OnRetry: m.BackendRetry,
	})
	require.NoError(t, err)

	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer db.Close()
	store := journal.NewStore(db)

	registry := handler.NewRegistry(handler.Deps{Devices: sim, Backend: client, Logger: log.Get()})
	loop, err := New(Deps{
		Queue:    client,
		Runner:   dispatch.New(registry, m),
		Journal:  store,
		Observer: m,
	})
	require.NoError(t, err)

	ch, err := realtime.New(realtime.Options{URL: "ws" + strings.TrimPrefix(relay.URL, "http"), Logger: log.Get()})
	require.NoError(t, err)
	loop.Attach(ch, WakeConfig{Room: "zk_105", JoinEvent: "zk_joinRoom", MessageEvent: "zk_message", WakeMessage: "start_fetch"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()
	go func() { _ = loop.Run(ctx) }()

	select {
	case j := <-joined:
		assert.Equal(t, "zk_joinRoom:zk_105", j)
	case <-time.After(3 * time.Second):
		t.Fatal("executor never joined the room")
	}

	require.Eventually(t, func() bool { return len(fb.snapshot()) >= 6 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{
		"fetch",
		"report 1 in_progress ",
		"send logs",
		"report 1 completed get_log:completed:logs sent to API successfully",
		"report 2 in_progress ",
		"report 2 failed bogus:failed:unknown kind- bogus",
	}, fb.snapshot())

	var sent []map[string]any
	require.NoError(t, json.Unmarshal([]byte(fb.logs), &sent))
	require.Len(t, sent, 1, "only the January record is in range")
	assert.Equal(t, "u1", sent[0]["user_hash"])
	assert.Equal(t, "10.0.0.5:4370", sent[0]["device_hash"])
	assert.Equal(t, "2024-01-15T08:30:00", sent[0]["dateTime"])

	require.Eventually(t, func() bool {
		entries, err := store.Recent(context.Background(), 10)
		return err == nil && len(entries) == 2
	}, 2*time.Second, 10*time.Millisecond)
	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	kinds := []command.Kind{entries[0].Kind, entries[1].Kind}
	assert.ElementsMatch(t, []command.Kind{command.KindGetLog, "bogus"}, kinds)
}

package session

import "context"

// Channel is the realtime connection a Loop listens on.
type Channel interface {
	OnConnect(fn func())
	On(event string, fn func(payload string))
	Emit(event string, data any) error
}

// WakeConfig names the room and events of the realtime protocol.
type WakeConfig struct {
	Room         string
	JoinEvent    string
	MessageEvent string
	WakeMessage  string
}

// Attach joins cfg.Room on every connect and triggers a cycle whenever the
// payload equals the wake message exactly. Other messages are ignored.
func (l *Loop) Attach(ch Channel, cfg WakeConfig) {
	ch.OnConnect(func() {
		if err := ch.Emit(cfg.JoinEvent, cfg.Room); err != nil {
			l.logger.Warn("join room failed", "room", cfg.Room, "error", err)
			return
		}
		l.logger.Info("joined room", "room", cfg.Room)
	})
	ch.On(cfg.MessageEvent, func(payload string) {
		if payload != cfg.WakeMessage {
			l.logger.Debug("ignoring realtime message", "event", cfg.MessageEvent, "payload", payload)
			return
		}
		l.Trigger(SourceRealtime)
	})
}

// ScheduledFetch is the body of the recurring fetch job.
func (l *Loop) ScheduledFetch(context.Context) error {
	l.Trigger(SourceSchedule)
	return nil
}

package api

import (
	"github.com/mattjoyce/biobridge/internal/journal"
	"github.com/mattjoyce/biobridge/internal/scheduler"
)

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string              `json:"status"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	Kinds         []string            `json:"kinds"`
	Jobs          []scheduler.JobInfo `json:"jobs"`
}

// WakeResponse is returned by POST /wake. Queued is false when a cycle was
// already pending and the request merged into it.
type WakeResponse struct {
	Queued bool `json:"queued"`
}

// JournalResponse is returned by GET /journal.
type JournalResponse struct {
	Entries []journal.Entry `json:"entries"`
	Count   int             `json:"count"`
}

package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

const (
	detailInvalid       = "invalid task data"
	detailConnectFailed = "failed to connect to the device"
)

// errInvalid marks a payload that failed extraction. Its text never reaches
// the backend; handlers report detailInvalid.
type errInvalid struct{ reason string }

func (e errInvalid) Error() string { return e.reason }

func invalidf(format string, args ...any) error {
	return errInvalid{reason: fmt.Sprintf(format, args...)}
}

// required returns the trimmed values of keys, or an error naming the first
// missing one.
func required(p command.Payload, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok := p.Get(k)
		if !ok {
			return nil, invalidf("missing %s", k)
		}
		out[k] = v
	}
	return out, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, invalidf("port %q is not a valid port", s)
	}
	return port, nil
}

func parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 || idx > device.MaxTemplateIndex {
		return 0, invalidf("template index %q outside 0..%d", s, device.MaxTemplateIndex)
	}
	return idx, nil
}

var dateLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.RFC3339, false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02", true},
}

// parseDate reads a payload timestamp in the reader's local zone. A date-only
// end bound covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	return parseDateIn(s, endOfDay, time.Local)
}

func parseDateIn(s string, endOfDay bool, loc *time.Location) (time.Time, error) {
	for _, l := range dateLayouts {
		t, err := time.ParseInLocation(l.layout, s, loc)
		if err != nil {
			continue
		}
		if l.dateOnly && endOfDay {
			// Wall clock, not elapsed time: DST days are 23 or 25 hours long.
			y, m, d := t.Date()
			t = time.Date(y, m, d, 23, 59, 59, 0, t.Location())
		}
		return t, nil
	}
	return time.Time{}, invalidf("date %q is not a recognised timestamp", s)
}

// maxIntervalMinutes caps update_interval at one week.
const maxIntervalMinutes = 7 * 24 * 60

func parseMinutes(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, invalidf("interval %q is not a positive number of minutes", s)
	}
	if n > maxIntervalMinutes {
		return 0, invalidf("interval %q exceeds %d minutes", s, maxIntervalMinutes)
	}
	return time.Duration(n) * time.Minute, nil
}

// target is the reader a command addresses.
type target struct {
	ip   string
	port int
}

func (t target) address() string { return device.Address(t.ip, t.port) }

func parseTarget(v map[string]string) (target, error) {
	port, err := parsePort(v["port"])
	if err != nil {
		return target{}, err
	}
	return target{ip: v["ip"], port: port}, nil
}

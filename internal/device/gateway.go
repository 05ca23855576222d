// Package device defines the capability used to drive a biometric reader and
// ships an in-memory simulator implementing it.
package device

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/mattjoyce/biobridge/internal/device Gateway,Factory

// MaxTemplateIndex is the highest finger/face slot a reader exposes.
const MaxTemplateIndex = 9

var (
	// ErrNotConnected is returned by every operation issued before Connect succeeds.
	ErrNotConnected = errors.New("device not connected")
	// ErrUnreachable is returned by Connect when no reader answers at the address.
	ErrUnreachable = errors.New("device unreachable")
	// ErrUserNotFound is returned when an enroll number is not known to the reader.
	ErrUserNotFound = errors.New("user not found on device")
)

// Gateway is a stateful session against one reader. Sessions are opened per
// command and never shared.
type Gateway interface {
	Connect(ctx context.Context, ip string, port int) error
	CreateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, enrollNumber string) error
	ReadLogs(ctx context.Context, r TimeRange) ([]LogEntry, error)
	ReadFingerTemplates(ctx context.Context, enrollNumber string) ([]Template, error)
	WriteFingerTemplate(ctx context.Context, enrollNumber string, index int, data string) error
	ReadFaceTemplates(ctx context.Context, enrollNumber string) ([]Template, error)
	WriteFaceTemplate(ctx context.Context, enrollNumber string, index int, data string) error
	Close() error
}

// Factory opens fresh, unconnected sessions.
type Factory interface {
	Open() Gateway
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func() Gateway

// Open calls f.
func (f FactoryFunc) Open() Gateway { return f() }

// User is the enrollment record written to a reader.
type User struct {
	EnrollNumber string
	Name         string
	Privilege    int
	Enabled      bool
}

// TimeRange is an inclusive [Start, End] window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the inclusive window.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Address joins ip and port the way the backend identifies a device.
func Address(ip string, port int) string {
	return fmt.Sprintf("%s:%d", ip, port)
}

// deviceTimeLayout matches the timestamp layout the backend parses.
const deviceTimeLayout = "2006-01-02T15:04:05"

// DeviceTime is a reader clock reading; readers have no zone information.
type DeviceTime time.Time

// MarshalJSON renders the time without a zone offset.
func (t DeviceTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(deviceTimeLayout) + `"`), nil
}

// UnmarshalJSON parses the zone-less layout.
func (t *DeviceTime) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	parsed, err := time.ParseInLocation(deviceTimeLayout, s, time.Local)
	if err != nil {
		return err
	}
	*t = DeviceTime(parsed)
	return nil
}

// LogEntry is one attendance record. JSON names follow the backend's schema.
type LogEntry struct {
	DeviceHash string     `json:"device_hash"`
	UserHash   string     `json:"user_hash"`
	VerifyMode int        `json:"VerifyMode"`
	InOutMode  int        `json:"indRegId"`
	Time       DeviceTime `json:"dateTime"`
	WorkCode   int        `json:"WorkCode"`
}

// Template is one biometric template slot.
type Template struct {
	Index int    `json:"TemplateIndex"`
	Data  string `json:"TemplateData"`
}

func timeOf(e LogEntry) time.Time { return time.Time(e.Time) }

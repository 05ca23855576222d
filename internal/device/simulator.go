package device

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Simulator is an in-memory fleet of readers keyed by ip:port. Every session
// it opens shares the fleet, so state written by one command is visible to
// the next.
type Simulator struct {
	mu        sync.Mutex
	reachable map[string]struct{}
	readers   map[string]*simReader
}

type simReader struct {
	users   map[string]User
	fingers map[string]map[int]string
	faces   map[string]map[int]string
	logs    []LogEntry
}

// NewSimulator creates a fleet. When reachable is non-empty only those
// addresses accept connections.
func NewSimulator(reachable ...string) *Simulator {
	s := &Simulator{readers: make(map[string]*simReader)}
	if len(reachable) > 0 {
		s.reachable = make(map[string]struct{}, len(reachable))
		for _, addr := range reachable {
			s.reachable[addr] = struct{}{}
		}
	}
	return s
}

// Open returns a new unconnected session.
func (s *Simulator) Open() Gateway {
	return &simSession{sim: s}
}

// reader returns the reader at addr, creating it on first use. Callers hold mu.
func (s *Simulator) reader(addr string) *simReader {
	r, ok := s.readers[addr]
	if !ok {
		r = &simReader{
			users:   make(map[string]User),
			fingers: make(map[string]map[int]string),
			faces:   make(map[string]map[int]string),
		}
		s.readers[addr] = r
	}
	return r
}

func (s *Simulator) canReach(addr string) bool {
	if s.reachable == nil {
		return true
	}
	_, ok := s.reachable[addr]
	return ok
}

// RecordAttendance appends a log entry to the reader at addr.
func (s *Simulator) RecordAttendance(addr string, entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.DeviceHash = addr
	r := s.reader(addr)
	r.logs = append(r.logs, entry)
}

// Users lists enrolled users at addr sorted by enroll number.
func (s *Simulator) Users(addr string) []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.reader(addr)
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollNumber < out[j].EnrollNumber })
	return out
}

type simSession struct {
	sim  *Simulator
	addr string
}

func (c *simSession) Connect(ctx context.Context, ip string, port int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := Address(ip, port)
	if !c.sim.canReach(addr) {
		return fmt.Errorf("connect %s: %w", addr, ErrUnreachable)
	}
	c.addr = addr
	return nil
}

// begin locks the fleet and returns the connected reader.
func (c *simSession) begin(ctx context.Context) (*simReader, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if c.addr == "" {
		return nil, nil, ErrNotConnected
	}
	c.sim.mu.Lock()
	return c.sim.reader(c.addr), c.sim.mu.Unlock, nil
}

func (c *simSession) CreateUser(ctx context.Context, user User) error {
	r, unlock, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if user.EnrollNumber == "" {
		return fmt.Errorf("enroll number is empty")
	}
	r.users[user.EnrollNumber] = user
	return nil
}

func (c *simSession) DeleteUser(ctx context.Context, enrollNumber string) error {
	r, unlock, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.users[enrollNumber]; !ok {
		return fmt.Errorf("delete %s: %w", enrollNumber, ErrUserNotFound)
	}
	delete(r.users, enrollNumber)
	delete(r.fingers, enrollNumber)
	delete(r.faces, enrollNumber)
	return nil
}

func (c *simSession) ReadLogs(ctx context.Context, tr TimeRange) ([]LogEntry, error) {
	r, unlock, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []LogEntry
	for _, e := range r.logs {
		if tr.Contains(timeOf(e)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *simSession) ReadFingerTemplates(ctx context.Context, enrollNumber string) ([]Template, error) {
	return c.readTemplates(ctx, enrollNumber, func(r *simReader) map[string]map[int]string { return r.fingers })
}

func (c *simSession) WriteFingerTemplate(ctx context.Context, enrollNumber string, index int, data string) error {
	return c.writeTemplate(ctx, enrollNumber, index, data, func(r *simReader) map[string]map[int]string { return r.fingers })
}

func (c *simSession) ReadFaceTemplates(ctx context.Context, enrollNumber string) ([]Template, error) {
	return c.readTemplates(ctx, enrollNumber, func(r *simReader) map[string]map[int]string { return r.faces })
}

func (c *simSession) WriteFaceTemplate(ctx context.Context, enrollNumber string, index int, data string) error {
	return c.writeTemplate(ctx, enrollNumber, index, data, func(r *simReader) map[string]map[int]string { return r.faces })
}

func (c *simSession) readTemplates(ctx context.Context, enrollNumber string, slots func(*simReader) map[string]map[int]string) ([]Template, error) {
	r, unlock, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []Template
	for i := 0; i <= MaxTemplateIndex; i++ {
		if data, ok := slots(r)[enrollNumber][i]; ok {
			out = append(out, Template{Index: i, Data: data})
		}
	}
	return out, nil
}

func (c *simSession) writeTemplate(ctx context.Context, enrollNumber string, index int, data string, slots func(*simReader) map[string]map[int]string) error {
	r, unlock, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if index < 0 || index > MaxTemplateIndex {
		return fmt.Errorf("template index %d out of range 0..%d", index, MaxTemplateIndex)
	}
	if _, ok := r.users[enrollNumber]; !ok {
		return fmt.Errorf("write template for %s: %w", enrollNumber, ErrUserNotFound)
	}
	m := slots(r)
	if m[enrollNumber] == nil {
		m[enrollNumber] = make(map[int]string)
	}
	m[enrollNumber][index] = data
	return nil
}

func (c *simSession) Close() error {
	c.addr = ""
	return nil
}

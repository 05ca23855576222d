package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which handler executes a command.
type Kind string

const (
	KindCreateUser             Kind = "create_user"
	KindDeleteUser             Kind = "delete_user"
	KindGetLog                 Kind = "get_log"
	KindGetUserFingerTemplates Kind = "get_user_finger_templates"
	KindSetUserFingerTemplates Kind = "set_user_finger_templates"
	KindGetUserFaceTemplates   Kind = "get_user_face_templates"
	KindSetUserFaceTemplates   Kind = "set_user_face_templates"
	KindUpdateInterval         Kind = "update_interval"
)

// AllKinds lists every kind the executor understands.
func AllKinds() []Kind {
	return []Kind{
		KindCreateUser,
		KindDeleteUser,
		KindGetLog,
		KindGetUserFingerTemplates,
		KindSetUserFingerTemplates,
		KindGetUserFaceTemplates,
		KindSetUserFaceTemplates,
		KindUpdateInterval,
	}
}

// Status is the backend-owned lifecycle state of a command.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Payload is the flat key/value argument set of a command.
type Payload map[string]string

// Get returns the trimmed value for key and whether it is non-empty.
func (p Payload) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Command is a unit of remote work fetched from the backend queue.
type Command struct {
	ID        string  `json:"id"`
	Kind      Kind    `json:"task_type"`
	Payload   Payload `json:"task_data"`
	Status    Status  `json:"status"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

type wireCommand struct {
	ID        json.RawMessage `json:"id"`
	Kind      string          `json:"task_type"`
	Payload   json.RawMessage `json:"task_data"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// UnmarshalJSON accepts the id as a number or a string, and task_data either
// as an object or as a string holding an encoded object. A payload that cannot
// be decoded yields an empty map so the handler rejects it during validation.
func (c *Command) UnmarshalJSON(data []byte) error {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := decodeID(w.ID)
	if err != nil {
		return err
	}
	c.ID = id
	c.Kind = Kind(strings.TrimSpace(w.Kind))
	c.Status = Status(w.Status)
	c.CreatedAt = w.CreatedAt
	c.UpdatedAt = w.UpdatedAt
	c.Payload = decodePayload(w.Payload)
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("command id is missing")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode command id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode command id: %w", err)
	}
	return n.String(), nil
}

func decodePayload(raw json.RawMessage) Payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Payload{}
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Payload{}
		}
		raw = []byte(inner)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Payload{}
	}
	out := make(Payload, len(obj))
	for k, v := range obj {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

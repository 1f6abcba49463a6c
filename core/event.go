package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the closed, client-facing vocabulary of what happened during
// a run. Consumers must treat an unrecognized type as a protocol violation,
// not a silently-ignorable case.
type EventType string

const (
	// EventStart opens every run.
	EventStart EventType = "start"
	// EventAgentChange reports that a different role is now handling the request.
	EventAgentChange EventType = "agent_change"
	// EventToolCall reports a tool invocation, deduplicated by call id.
	EventToolCall EventType = "tool_call"
	// EventToolResult reports a tool completion.
	EventToolResult EventType = "tool_result"
	// EventDelta streams incremental response text in production order.
	EventDelta EventType = "delta"
	// EventComplete carries the final response and the set of involved roles.
	EventComplete EventType = "complete"
	// EventArtifactsSaved reports the durable artifact location; emitted
	// exactly once per run on every exit path.
	EventArtifactsSaved EventType = "artifacts_saved"
	// EventError terminates a failed run.
	EventError EventType = "error"
)

// ParseEventType maps a wire string back to an EventType, failing on
// anything outside the closed set.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventStart, EventAgentChange, EventToolCall, EventToolResult,
		EventDelta, EventComplete, EventArtifactsSaved, EventError:
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// Event is a single normalized event emitted by a session to its listeners.
// Every event carries a unique id so journal entries and delivered events can
// be correlated. Data holds the per-type payload and is flattened into the
// serialized form alongside id, type, timestamp and role.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Role      string         `json:"role"`
	Data      map[string]any `json:"-"`
}

// NewEvent creates an event with a fresh id, stamped with the current UTC time.
func NewEvent(t EventType, role string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{ID: NewID(), Type: t, Timestamp: time.Now().UTC(), Role: role, Data: data}
}

// MarshalJSON flattens Data into the top-level object. Reserved keys
// (id, type, timestamp, role) always win over data entries.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Data)+4)
	for k, v := range e.Data {
		out[k] = v
	}
	out["id"] = e.ID
	out["type"] = string(e.Type)
	out["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	out["role"] = e.Role
	return json.Marshal(out)
}

// SSE renders the event in Server-Sent Events framing: a named event plus a
// JSON data blob.
func (e Event) SSE() string {
	data, err := json.Marshal(e)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, data)
}

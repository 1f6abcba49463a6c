package core

import "time"

// TraceStep is one immutable entry in the handoff history of a run. The
// trace is the authoritative record of which role acted when; it is more
// reliable than inferring activity from raw runtime signals.
type TraceStep struct {
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"agent"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

// Trace is an append-only ordered log of TraceSteps for a single run.
type Trace struct {
	steps []TraceStep
}

// Append records a step with the current timestamp and returns it.
func (tr *Trace) Append(role, action, details string) TraceStep {
	step := TraceStep{
		Timestamp: time.Now().UTC(),
		Role:      role,
		Action:    action,
		Details:   details,
	}
	tr.steps = append(tr.steps, step)
	return step
}

// Steps returns a defensive copy of the recorded steps.
func (tr *Trace) Steps() []TraceStep {
	out := make([]TraceStep, len(tr.steps))
	copy(out, tr.steps)
	return out
}

// Len returns the number of recorded steps.
func (tr *Trace) Len() int { return len(tr.steps) }

// Package runtime drives the agent loop for one run: it activates roles,
// calls the model, executes tools, and requests transfers through the
// session's handoff callback. Progress is reported as a stream of typed
// signals followed by exactly one Outcome.
package runtime

import (
	"context"

	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/model"
	"github.com/onlyoneaman/ai-team/workforce"
)

// Signal is a marker interface implemented by the closed set of runtime
// progress notifications. Consumers switch on the concrete type.
type Signal interface {
	isSignal()
}

// SignalRoleActive reports that a role has taken control of the run.
type SignalRoleActive struct {
	Role string
}

// SignalToolInvoked reports the start of a tool execution.
type SignalToolInvoked struct {
	CallID string
	Name   string
}

// SignalToolCompleted reports a finished tool execution.
type SignalToolCompleted struct {
	CallID string
	Name   string
}

// SignalTextDelta carries an incremental chunk of the response text.
type SignalTextDelta struct {
	Content string
}

// SignalHandoff reports a completed transfer between roles. It is emitted
// after the handoff callback has accepted the transfer.
type SignalHandoff struct {
	From     string
	To       string
	Envelope core.Envelope
}

func (SignalRoleActive) isSignal()    {}
func (SignalToolInvoked) isSignal()   {}
func (SignalToolCompleted) isSignal() {}
func (SignalTextDelta) isSignal()     {}
func (SignalHandoff) isSignal()       {}

// HandoffFunc authorizes and applies a transfer request. The runtime calls
// it synchronously before acting on a transfer; a non-nil error terminates
// the run with that error.
type HandoffFunc func(from, to string, env core.Envelope) (*workforce.Role, error)

// DefaultMaxTurns bounds the agent loop when the request does not.
const DefaultMaxTurns = 30

// Request describes one run handed to a runtime.
type Request struct {
	// Message is the user input that starts the run.
	Message string
	// Hierarchy supplies the roles, their tools, and the entry point.
	Hierarchy *workforce.Hierarchy
	// OnHandoff is invoked synchronously for every transfer request.
	OnHandoff HandoffFunc
	// MaxTurns bounds the number of model turns; <= 0 uses DefaultMaxTurns.
	MaxTurns int
	// Stream requests incremental text deltas where the model supports them.
	Stream bool
}

// Outcome is the single terminal result of a run.
type Outcome struct {
	// Output is the final response text; empty when Err is set.
	Output string
	// Usage aggregates token usage across all model turns.
	Usage model.TokenUsage
	// Err is non-nil when the run terminated abnormally.
	Err error
}

// Runtime executes one run. The signal channel is closed before the outcome
// is delivered, and exactly one Outcome is always sent.
type Runtime interface {
	Run(ctx context.Context, req Request) (<-chan Signal, <-chan Outcome)
}

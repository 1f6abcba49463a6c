package runtime

import (
	"context"

	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/model"
)

// ScriptStep is one step of a scripted run: either a signal emitted as-is or
// a transfer request routed through the handoff callback. Exactly one field
// should be set.
type ScriptStep struct {
	Signal   Signal
	Transfer *ScriptTransfer
}

// ScriptTransfer requests a transfer from the currently active scripted role.
type ScriptTransfer struct {
	To       string
	Envelope core.Envelope
}

// ScriptedRuntime replays a fixed sequence of steps. It drives the handoff
// callback exactly like a model-backed runtime would, so coordinator
// behavior can be tested deterministically without a model.
type ScriptedRuntime struct {
	Steps []ScriptStep
	// Output is the final response text when the script completes.
	Output string
	// Usage is reported on the outcome verbatim.
	Usage model.TokenUsage
}

// Run implements Runtime.
func (s *ScriptedRuntime) Run(ctx context.Context, req Request) (<-chan Signal, <-chan Outcome) {
	signals := make(chan Signal, 16)
	outcome := make(chan Outcome, 1)

	go func() {
		defer close(outcome)

		finish := func(o Outcome) {
			close(signals)
			outcome <- o
		}

		current := req.Hierarchy.Entry()
		for _, step := range s.Steps {
			select {
			case <-ctx.Done():
				finish(Outcome{Err: ctx.Err()})
				return
			default:
			}
			if step.Signal != nil {
				signals <- step.Signal
				continue
			}
			if step.Transfer == nil {
				continue
			}
			target, err := req.OnHandoff(current, step.Transfer.To, step.Transfer.Envelope)
			if err != nil {
				finish(Outcome{Usage: s.Usage, Err: err})
				return
			}
			signals <- SignalHandoff{From: current, To: target.ID, Envelope: step.Transfer.Envelope}
			signals <- SignalRoleActive{Role: target.ID}
			current = target.ID
		}
		finish(Outcome{Output: s.Output, Usage: s.Usage})
	}()

	return signals, outcome
}

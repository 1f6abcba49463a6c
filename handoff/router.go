// Package handoff enforces the transfer rules of a role hierarchy at run
// time. The Router is the single writer of per-run task state: every transfer
// between roles passes through it, where authorization is checked, the trace
// is extended, deliverables are archived, and reviewer verdicts are applied.
package handoff

import (
	"fmt"
	"strings"
	"sync"

	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/logging"
	"github.com/onlyoneaman/ai-team/workforce"
)

// ViolationError reports a transfer attempt outside the authorized edges of
// the hierarchy. It aborts the run.
type ViolationError struct {
	From string
	To   string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("handoff violation: role %q is not authorized to transfer to %q", e.From, e.To)
}

// Options configures a Router.
type Options struct {
	// Logger receives per-transfer debug output. Defaults to a no-op logger.
	Logger logging.Logger
}

// Router mediates all transfers for one run. It is safe for concurrent use:
// the runtime goroutine drives transfers while the session goroutine reads
// the current role, so all state is guarded by a single mutex.
type Router struct {
	mu        sync.Mutex
	hierarchy *workforce.Hierarchy
	task      *core.TaskState
	trace     *core.Trace
	current   string
	handoffs  int
	logger    logging.Logger
}

// NewRouter creates a router positioned at the hierarchy's entry role with a
// fresh trace. The task state is owned by the router for the duration of the
// run; callers read it through Task().
func NewRouter(h *workforce.Hierarchy, task *core.TaskState, optFns ...func(o *Options)) *Router {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{
		hierarchy: h,
		task:      task,
		trace:     &core.Trace{},
		current:   h.Entry(),
		logger:    opts.Logger,
	}
}

// AttemptTransfer routes a transfer request from one role to another. On an
// authorized transfer it appends a trace step, archives the envelope as the
// sender's deliverable for the current iteration, applies any reviewer
// verdict the envelope carries, and moves the active role to the target,
// returning the new current role and the updated task status. Whether the
// run continues is the caller's decision. Unauthorized transfers return a
// *ViolationError and leave all state untouched except for a trace entry
// recording the rejected attempt.
func (r *Router) AttemptTransfer(from, to string, env core.Envelope) (*workforce.Role, core.TaskStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sender, ok := r.hierarchy.Role(from)
	if !ok || !sender.AuthorizedTo(to) {
		r.trace.Append(from, "handoff_rejected", fmt.Sprintf("unauthorized transfer to %s", to))
		r.logger.Warn("unauthorized transfer", "from", from, "to", to)
		return nil, r.task.Status, &ViolationError{From: from, To: to}
	}
	target, ok := r.hierarchy.Role(to)
	if !ok {
		// Unreachable for a validated hierarchy; AuthorizedTo already
		// implies the target exists.
		return nil, r.task.Status, &ViolationError{From: from, To: to}
	}

	r.trace.Append(from, "handoff", fmt.Sprintf("transfer to %s (%s)", to, env.Kind))

	key := r.task.ArtifactKey(from)
	if r.task.StoreArtifact(key, env) {
		r.logger.Debug("artifact stored", "key", key, "kind", string(env.Kind))
	}

	if env.Kind == core.KindEvaluation {
		r.applyVerdict(env)
	}

	r.current = to
	r.handoffs++
	r.logger.Info("handoff", "from", from, "to", to, "kind", string(env.Kind), "status", string(r.task.Status))
	return target, r.task.Status, nil
}

// applyVerdict extracts a reviewer verdict from an evaluation payload and
// applies it to the task. Extraction is best effort: a payload with no
// recognizable verdict leaves the task unchanged, and the receiving
// orchestrator decides what to do with the raw evaluation.
func (r *Router) applyVerdict(env core.Envelope) {
	payload := env.DecodePayload()
	verdict, _ := payload["verdict"].(string)
	switch strings.ToUpper(strings.TrimSpace(verdict)) {
	case "REVISE":
		feedback, _ := payload["feedback"].(string)
		r.task.RequestRevision(feedback)
		r.logger.Info("revision requested", "iteration", r.task.Iteration)
	case "PASS":
		r.task.MarkDone()
		r.logger.Info("task approved")
	}
}

// CurrentRole returns the id of the role currently holding control.
func (r *Router) CurrentRole() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Task returns a snapshot of the task state.
func (r *Router) Task() core.TaskState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.task.Snapshot()
}

// Trace returns a copy of the handoff history so far.
func (r *Router) Trace() []core.TraceStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace.Steps()
}

// Handoffs returns the number of successful transfers so far.
func (r *Router) Handoffs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handoffs
}

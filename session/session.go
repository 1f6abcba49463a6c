// Package session coordinates one run of the workforce: it drives the
// runtime, normalizes runtime signals into the stable client-facing event
// vocabulary, journals every event, and persists the run's artifacts exactly
// once on every exit path.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/onlyoneaman/ai-team/artifact"
	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/handoff"
	"github.com/onlyoneaman/ai-team/internal/runid"
	"github.com/onlyoneaman/ai-team/logging"
	"github.com/onlyoneaman/ai-team/model"
	"github.com/onlyoneaman/ai-team/runtime"
	"github.com/onlyoneaman/ai-team/workforce"
)

// State is the lifecycle of a session.
type State string

const (
	// StateCreated is the state before RunStream is called.
	StateCreated State = "created"
	// StateRunning is the state while the runtime is producing signals.
	StateRunning State = "running"
	// StateCompleted is terminal for a successful run.
	StateCompleted State = "completed"
	// StateFailed is terminal for a run that ended with an error event.
	StateFailed State = "failed"
)

// EventsArtifact is the journal file name inside a run's artifact directory.
const EventsArtifact = "events.jsonl"

// Options configures a Session.
type Options struct {
	// Store receives the run artifacts. nil disables persistence entirely;
	// no journal is written and no artifacts_saved event is emitted.
	Store artifact.Store
	// Logger receives structured progress output. Defaults to a no-op logger.
	Logger logging.Logger
	// MaxTurns bounds the runtime's agent loop; <= 0 uses the runtime default.
	MaxTurns int
	// MaxIterations bounds the task revision loop; <= 0 uses the task default.
	MaxIterations int
	// TaskType labels the task in the persisted task state.
	TaskType string
	// ModelName selects the pricing row for the cost estimate.
	ModelName string
}

// Session owns one run end to end. A session is single-use: RunStream may be
// called at most once.
type Session struct {
	runID    string
	wf       *workforce.Workforce
	rt       runtime.Runtime
	store    artifact.Store
	logger   logging.Logger
	maxTurns int
	maxIters int
	taskType string
	modelNm  string

	mu        sync.Mutex
	state     State
	events    []core.Event
	roles     []string
	roleSeen  map[string]bool
	response  string
	usage     model.TokenUsage
	runErr    error
	router    *handoff.Router
	startTime time.Time
	endTime   time.Time

	started     bool
	persistOnce sync.Once
}

// New creates a session for one run of the given workforce on the given
// runtime. The run id is assigned immediately so callers can reference the
// artifact location before the run starts.
func New(rt runtime.Runtime, wf *workforce.Workforce, optFns ...func(o *Options)) *Session {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	id := runid.New()
	return &Session{
		runID:    id,
		wf:       wf,
		rt:       rt,
		store:    opts.Store,
		logger:   logging.WithRun(opts.Logger, id),
		maxTurns: opts.MaxTurns,
		maxIters: opts.MaxIterations,
		taskType: opts.TaskType,
		modelNm:  opts.ModelName,
		state:    StateCreated,
		roleSeen: map[string]bool{},
	}
}

// ID returns the run id.
func (s *Session) ID() string { return s.runID }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes the workflow and returns the final result, discarding the
// event stream. The returned error is the runtime's terminal error, if any;
// the Result is valid either way.
func (s *Session) Run(ctx context.Context, message string) (*Result, error) {
	for range s.RunStream(ctx, message) {
	}
	s.mu.Lock()
	err := s.runErr
	s.mu.Unlock()
	return s.Result(), err
}

// RunStream executes the workflow and emits events as they occur. The
// channel is closed after the terminal event sequence (complete or error,
// then artifacts_saved when persistence is enabled). Calling RunStream twice
// yields a closed channel carrying a single error event.
func (s *Session) RunStream(ctx context.Context, message string) <-chan core.Event {
	out := make(chan core.Event, 64)

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		ev := core.NewEvent(core.EventError, "", map[string]any{"error": "session already consumed"})
		out <- ev
		close(out)
		return out
	}
	s.started = true
	s.state = StateRunning
	s.startTime = time.Now().UTC()
	s.mu.Unlock()

	go s.run(ctx, message, out)
	return out
}

func (s *Session) run(ctx context.Context, message string, out chan<- core.Event) {
	defer close(out)

	// Artifacts persist exactly once on every exit path, including panics in
	// the signal loop; the Once also makes the inline call below a no-op here.
	if s.store != nil {
		defer s.persistOnce.Do(func() { s.persistArtifacts(message) })
	}

	// The captured input lands on disk before any event is produced, so a
	// crashed run is still attributable.
	if s.store != nil {
		if err := s.store.Save(s.runID, "input.txt", []byte(message)); err != nil {
			s.logger.Warn("failed to persist input", "error", err)
		}
	}

	task := core.NewTaskState(message, s.taskType, s.maxIters)
	router := handoff.NewRouter(s.wf.Hierarchy, task, func(o *handoff.Options) {
		o.Logger = s.logger
	})
	s.mu.Lock()
	s.router = router
	s.mu.Unlock()

	currentRole := router.CurrentRole()
	s.addRole(currentRole)

	emit := func(t core.EventType, role string, data map[string]any) {
		ev := core.NewEvent(t, role, data)
		s.record(ev)
		// A disconnected consumer must not wedge the run: the journal already
		// holds the event, so delivery is abandoned once the context is
		// cancelled and the run keeps draining signals toward its terminal
		// state and the deferred persistence.
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	}

	emit(core.EventStart, currentRole, map[string]any{"message": "Starting agent workflow..."})
	s.logger.Info("run started", "company", s.wf.Company.Name, "entry", currentRole)

	signals, outcomeCh := s.rt.Run(ctx, runtime.Request{
		Message:   message,
		Hierarchy: s.wf.Hierarchy,
		OnHandoff: func(from, to string, env core.Envelope) (*workforce.Role, error) {
			role, _, err := router.AttemptTransfer(from, to, env)
			return role, err
		},
		MaxTurns:  s.maxTurns,
		Stream:    true,
	})

	var chunks strings.Builder
	seenCalls := map[string]bool{}

	for sig := range signals {
		// The router is the source of truth for who holds control; handoff
		// callbacks run before the runtime emits the corresponding signals,
		// so any divergence here is a completed role change.
		if cur := router.CurrentRole(); cur != currentRole {
			currentRole = cur
			s.addRole(cur)
			emit(core.EventAgentChange, cur, map[string]any{
				"details": fmt.Sprintf("%s is now handling the request", cur),
			})
		}

		switch sig := sig.(type) {
		case runtime.SignalToolInvoked:
			if seenCalls[sig.CallID] {
				continue
			}
			seenCalls[sig.CallID] = true
			s.addRole(currentRole)
			emit(core.EventToolCall, currentRole, map[string]any{
				"tool":    sig.Name,
				"details": fmt.Sprintf("Using tool: %s", sig.Name),
			})
		case runtime.SignalToolCompleted:
			emit(core.EventToolResult, currentRole, map[string]any{
				"details": "Tool execution completed",
			})
		case runtime.SignalTextDelta:
			chunks.WriteString(sig.Content)
			emit(core.EventDelta, currentRole, map[string]any{"content": sig.Content})
		case runtime.SignalRoleActive, runtime.SignalHandoff:
			// Covered by the router sync above; the handoff itself lives in
			// the router's trace.
		}
	}

	outcome := <-outcomeCh

	s.mu.Lock()
	s.endTime = time.Now().UTC()
	s.usage = outcome.Usage
	s.mu.Unlock()

	if outcome.Err != nil {
		s.mu.Lock()
		s.runErr = outcome.Err
		s.response = fmt.Sprintf("Error: %v", outcome.Err)
		s.state = StateFailed
		s.mu.Unlock()
		s.logger.Error("run failed", "error", outcome.Err)
		emit(core.EventError, currentRole, map[string]any{"error": outcome.Err.Error()})
	} else {
		response := outcome.Output
		if response == "" {
			response = chunks.String()
		}
		if response == "" {
			response = "No response generated."
		}
		s.mu.Lock()
		s.response = response
		s.state = StateCompleted
		s.mu.Unlock()
		s.logger.Info("run completed", "roles", len(s.rolesInvolved()))
		emit(core.EventComplete, currentRole, map[string]any{
			"response":       response,
			"roles_involved": s.rolesInvolved(),
		})
	}

	if s.store != nil {
		s.persistOnce.Do(func() { s.persistArtifacts(message) })
		emit(core.EventArtifactsSaved, currentRole, map[string]any{
			"path": s.ArtifactsDir(),
		})
	}
}

// record journals the event before it is delivered to the listener, so the
// on-disk journal is always at least as complete as what any client saw.
func (s *Session) record(ev core.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	if s.store == nil {
		return
	}
	line, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("failed to encode event", "type", string(ev.Type), "error", err)
		return
	}
	if err := s.store.Append(s.runID, EventsArtifact, append(line, '\n')); err != nil {
		s.logger.Warn("failed to journal event", "type", string(ev.Type), "error", err)
	}
}

func (s *Session) addRole(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role == "" || s.roleSeen[role] {
		return
	}
	s.roleSeen[role] = true
	s.roles = append(s.roles, role)
}

func (s *Session) rolesInvolved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.roles...)
}

// ArtifactsDir returns the directory holding this run's artifacts, or ""
// when the store is not filesystem-backed or persistence is disabled.
func (s *Session) ArtifactsDir() string {
	if fs, ok := s.store.(*artifact.FSStore); ok {
		return fs.RunDir(s.runID)
	}
	return ""
}

package session

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlyoneaman/ai-team/artifact"
	"github.com/onlyoneaman/ai-team/config"
	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/handoff"
	"github.com/onlyoneaman/ai-team/model"
	"github.com/onlyoneaman/ai-team/runtime"
	"github.com/onlyoneaman/ai-team/workforce"
)

func testWorkforce(t *testing.T) *workforce.Workforce {
	t.Helper()
	h, err := workforce.NewHierarchy("boss",
		&workforce.Role{ID: "boss", Type: workforce.RoleOrchestrator, Targets: []string{"writer", "critic"}},
		&workforce.Role{ID: "writer", Type: workforce.RoleWorker, Targets: []string{"boss"}},
		&workforce.Role{ID: "critic", Type: workforce.RoleReviewer, Targets: []string{"boss"}},
	)
	require.NoError(t, err)
	return &workforce.Workforce{
		Company:   config.Company{Name: "Solaris"},
		Hierarchy: h,
	}
}

func drainEvents(ch <-chan core.Event) []core.Event {
	var events []core.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func eventTypes(events []core.Event) []core.EventType {
	types := make([]core.EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func countType(events []core.Event, t core.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestSession_DelegationRoundTrip(t *testing.T) {
	wf := testWorkforce(t)
	store := artifact.NewInMemoryStore()
	rt := &runtime.ScriptedRuntime{
		Steps: []runtime.ScriptStep{
			{Transfer: &runtime.ScriptTransfer{To: "writer", Envelope: core.NewEnvelope(core.KindTask, map[string]any{"message": "research"})}},
			{Signal: runtime.SignalToolInvoked{CallID: "c1", Name: "get_market_research"}},
			{Signal: runtime.SignalToolCompleted{CallID: "c1", Name: "get_market_research"}},
			{Transfer: &runtime.ScriptTransfer{To: "boss", Envelope: core.NewEnvelope(core.KindResult, map[string]any{"message": "findings"})}},
			{Signal: runtime.SignalTextDelta{Content: "Here are "}},
			{Signal: runtime.SignalTextDelta{Content: "the findings."}},
		},
		Output: "Here are the findings.",
		Usage:  model.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}

	s := New(rt, wf, func(o *Options) {
		o.Store = store
		o.ModelName = "gpt-4.1"
	})
	events := drainEvents(s.RunStream(context.Background(), "do research"))

	assert.Equal(t, []core.EventType{
		core.EventStart,
		core.EventAgentChange, // writer takes over
		core.EventToolCall,
		core.EventToolResult,
		core.EventAgentChange, // back to boss
		core.EventDelta,
		core.EventDelta,
		core.EventComplete,
		core.EventArtifactsSaved,
	}, eventTypes(events))

	// Tool call attributed to the role holding control when it ran.
	for _, ev := range events {
		if ev.Type == core.EventToolCall {
			assert.Equal(t, "writer", ev.Role)
		}
	}

	assert.Equal(t, StateCompleted, s.State())
	result := s.Result()
	assert.Equal(t, "Here are the findings.", result.Response)
	assert.Equal(t, []string{"boss", "writer"}, result.RolesInvolved)
	assert.Equal(t, int64(150), result.Usage.TotalTokens)
	require.NotNil(t, result.Cost.CostUSD)
}

func TestSession_RevisionLoop(t *testing.T) {
	wf := testWorkforce(t)
	rt := &runtime.ScriptedRuntime{
		Steps: []runtime.ScriptStep{
			{Transfer: &runtime.ScriptTransfer{To: "critic", Envelope: core.NewEnvelope(core.KindResult, map[string]any{"message": "draft"})}},
			{Transfer: &runtime.ScriptTransfer{To: "boss", Envelope: core.NewEnvelope(core.KindEvaluation, map[string]any{"verdict": "REVISE", "feedback": "needs sources"})}},
			{Transfer: &runtime.ScriptTransfer{To: "critic", Envelope: core.NewEnvelope(core.KindResult, map[string]any{"message": "draft v2"})}},
			{Transfer: &runtime.ScriptTransfer{To: "boss", Envelope: core.NewEnvelope(core.KindEvaluation, map[string]any{"verdict": "PASS"})}},
		},
		Output: "final deliverable",
	}

	s := New(rt, wf, func(o *Options) { o.Store = artifact.NewInMemoryStore() })
	_, err := s.Run(context.Background(), "write a post")
	require.NoError(t, err)

	// The router applied both verdicts in order.
	task := sessionTask(t, s)
	assert.Equal(t, core.StatusDone, task.Status)
	assert.Equal(t, 1, task.Iteration)
	assert.Equal(t, []string{"needs sources"}, task.Feedback)
	// Deliverables were archived per sender and iteration.
	assert.Contains(t, task.Artifacts, "boss_v0")
	assert.Contains(t, task.Artifacts, "critic_v0")
	assert.Contains(t, task.Artifacts, "boss_v1")
}

func TestSession_UnauthorizedTransferFails(t *testing.T) {
	wf := testWorkforce(t)
	store := artifact.NewInMemoryStore()
	rt := &runtime.ScriptedRuntime{
		Steps: []runtime.ScriptStep{
			{Transfer: &runtime.ScriptTransfer{To: "writer", Envelope: core.NewEnvelope(core.KindTask, nil)}},
			// Workers cannot talk to the reviewer directly.
			{Transfer: &runtime.ScriptTransfer{To: "critic", Envelope: core.NewEnvelope(core.KindResult, nil)}},
		},
		Output: "never reached",
	}

	s := New(rt, wf, func(o *Options) { o.Store = store })
	events := drainEvents(s.RunStream(context.Background(), "go"))

	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, 1, countType(events, core.EventError))
	// Artifacts are still saved on the failure path.
	assert.Equal(t, 1, countType(events, core.EventArtifactsSaved))
	last := events[len(events)-1]
	assert.Equal(t, core.EventArtifactsSaved, last.Type)

	var errEvent core.Event
	for _, ev := range events {
		if ev.Type == core.EventError {
			errEvent = ev
		}
	}
	assert.Contains(t, errEvent.Data["error"], "not authorized")

	var violation *handoff.ViolationError
	require.ErrorAs(t, s.runErr, &violation)
	assert.Equal(t, "writer", violation.From)
	assert.Equal(t, "critic", violation.To)
}

func TestSession_ToolCallDedup(t *testing.T) {
	wf := testWorkforce(t)
	rt := &runtime.ScriptedRuntime{
		Steps: []runtime.ScriptStep{
			{Signal: runtime.SignalToolInvoked{CallID: "c1", Name: "get_seo_data"}},
			{Signal: runtime.SignalToolInvoked{CallID: "c1", Name: "get_seo_data"}},
			{Signal: runtime.SignalToolCompleted{CallID: "c1", Name: "get_seo_data"}},
			{Signal: runtime.SignalToolInvoked{CallID: "c2", Name: "get_seo_data"}},
			{Signal: runtime.SignalToolCompleted{CallID: "c2", Name: "get_seo_data"}},
		},
		Output: "done",
	}

	s := New(rt, wf)
	events := drainEvents(s.RunStream(context.Background(), "go"))

	assert.Equal(t, 2, countType(events, core.EventToolCall))
	assert.Equal(t, 2, countType(events, core.EventToolResult))
}

func TestSession_PersistedArtifacts(t *testing.T) {
	wf := testWorkforce(t)
	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)
	rt := &runtime.ScriptedRuntime{
		Steps: []runtime.ScriptStep{
			{Transfer: &runtime.ScriptTransfer{To: "writer", Envelope: core.NewEnvelope(core.KindTask, nil)}},
			{Signal: runtime.SignalTextDelta{Content: "hello"}},
		},
		Output: "hello",
		Usage:  model.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}

	s := New(rt, wf, func(o *Options) {
		o.Store = store
		o.ModelName = "gpt-4.1"
	})
	result, err := s.Run(context.Background(), "the input")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ArtifactsDir)

	input, err := store.Get(s.ID(), "input.txt")
	require.NoError(t, err)
	assert.Equal(t, "the input", string(input))

	response, err := store.Get(s.ID(), "response.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(response))

	// The journal holds one JSON line per event.
	journal, err := store.Get(s.ID(), EventsArtifact)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(journal)), "\n")
	assert.Len(t, lines, result.EventCount)
	for _, line := range lines {
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &decoded))
		_, err := core.ParseEventType(decoded["type"].(string))
		require.NoError(t, err)
	}

	var trace map[string]any
	traceRaw, err := store.Get(s.ID(), "trace.json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(traceRaw, &trace))
	assert.Equal(t, s.ID(), trace["run_id"])
	assert.Equal(t, "Solaris", trace["company"])
	usage := trace["usage"].(map[string]any)
	assert.Equal(t, float64(30), usage["total_tokens"])
	assert.NotNil(t, usage["total_estimated_usd_cost"])

	var conversation map[string]any
	convRaw, err := store.Get(s.ID(), "conversation.json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(convRaw, &conversation))
	assert.Equal(t, "the input", conversation["input"])
	assert.Equal(t, "hello", conversation["output"])
}

func TestSession_ResponseFallbacks(t *testing.T) {
	wf := testWorkforce(t)

	// Empty output falls back to the concatenated deltas.
	rt := &runtime.ScriptedRuntime{
		Steps: []runtime.ScriptStep{
			{Signal: runtime.SignalTextDelta{Content: "partial "}},
			{Signal: runtime.SignalTextDelta{Content: "answer"}},
		},
	}
	s := New(rt, wf)
	result, err := s.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "partial answer", result.Response)

	// No output and no deltas falls back to the placeholder.
	s = New(&runtime.ScriptedRuntime{}, wf)
	result, err = s.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "No response generated.", result.Response)
}

func TestSession_AbandonedStreamStillPersists(t *testing.T) {
	wf := testWorkforce(t)
	store := artifact.NewInMemoryStore()
	// Far more deltas than the stream buffer holds, so an abandoned consumer
	// is guaranteed to leave the run mid-stream.
	steps := make([]runtime.ScriptStep, 0, 200)
	for i := 0; i < 200; i++ {
		steps = append(steps, runtime.ScriptStep{Signal: runtime.SignalTextDelta{Content: "chunk "}})
	}
	rt := &runtime.ScriptedRuntime{Steps: steps, Output: "never delivered"}

	s := New(rt, wf, func(o *Options) { o.Store = store })
	ctx, cancel := context.WithCancel(context.Background())
	events := s.RunStream(ctx, "long run")

	// Read a single event, then disconnect without draining the stream.
	<-events
	cancel()

	require.Eventually(t, func() bool {
		return s.State() != StateRunning
	}, 5*time.Second, 10*time.Millisecond, "run must reach a terminal state after the client disconnects")
	assert.Equal(t, StateFailed, s.State())

	// Artifacts were still persisted on the way out.
	response, err := store.Get(s.ID(), "response.md")
	require.NoError(t, err)
	assert.Contains(t, string(response), "context canceled")
	_, err = store.Get(s.ID(), "trace.json")
	require.NoError(t, err)
	_, err = store.Get(s.ID(), "conversation.json")
	require.NoError(t, err)
}

func TestSession_SingleUse(t *testing.T) {
	wf := testWorkforce(t)
	s := New(&runtime.ScriptedRuntime{Output: "ok"}, wf)
	_, err := s.Run(context.Background(), "go")
	require.NoError(t, err)

	events := drainEvents(s.RunStream(context.Background(), "again"))
	require.Len(t, events, 1)
	assert.Equal(t, core.EventError, events[0].Type)
}

func TestSession_NoStoreSkipsArtifactsEvent(t *testing.T) {
	wf := testWorkforce(t)
	s := New(&runtime.ScriptedRuntime{Output: "ok"}, wf)
	events := drainEvents(s.RunStream(context.Background(), "go"))

	assert.Equal(t, 0, countType(events, core.EventArtifactsSaved))
	assert.Equal(t, core.EventComplete, events[len(events)-1].Type)
	assert.Empty(t, s.ArtifactsDir())
}

// sessionTask pulls the final task state out of the persisted trace via the
// router snapshot captured by the session.
func sessionTask(t *testing.T, s *Session) core.TaskState {
	t.Helper()
	require.NotNil(t, s.router)
	return s.router.Task()
}

package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/model"
	"github.com/onlyoneaman/ai-team/tool"
	"github.com/onlyoneaman/ai-team/workforce"
)

func testHierarchy(t *testing.T) *workforce.Hierarchy {
	t.Helper()
	echo := tool.NewFunctionTool("echo", "Echo the input", nil,
		func(_ context.Context, args map[string]any) (any, error) {
			text, _ := args["text"].(string)
			return "echo: " + text, nil
		})
	h, err := workforce.NewHierarchy("boss",
		&workforce.Role{ID: "boss", Type: workforce.RoleOrchestrator, Instructions: "You lead.", Targets: []string{"writer", "critic"}},
		&workforce.Role{ID: "writer", Type: workforce.RoleWorker, Instructions: "You write.",
			Tools: map[string]tool.Tool{"echo": echo}, Targets: []string{"boss"}},
		&workforce.Role{ID: "critic", Type: workforce.RoleReviewer, Instructions: "You review.", Targets: []string{"boss"}},
	)
	require.NoError(t, err)
	return h
}

// passthroughHandoff approves every transfer and records it.
func passthroughHandoff(h *workforce.Hierarchy, log *[]string) HandoffFunc {
	return func(from, to string, env core.Envelope) (*workforce.Role, error) {
		*log = append(*log, from+"->"+to)
		role, ok := h.Role(to)
		if !ok {
			return nil, errors.New("unknown role")
		}
		return role, nil
	}
}

func collect(t *testing.T, r Runtime, req Request) ([]Signal, Outcome) {
	t.Helper()
	signals, outcomeCh := r.Run(context.Background(), req)
	var seen []Signal
	for s := range signals {
		seen = append(seen, s)
	}
	return seen, <-outcomeCh
}

func TestModelRuntime_DirectAnswer(t *testing.T) {
	h := testHierarchy(t)
	m := model.NewMockModel("mock", "test")
	m.Enqueue(model.Response{
		Text:         "the answer",
		FinishReason: "stop",
		Usage:        &model.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	})

	r := NewModelRuntime(m)
	signals, outcome := collect(t, r, Request{Message: "question", Hierarchy: h})

	require.NoError(t, outcome.Err)
	assert.Equal(t, "the answer", outcome.Output)
	assert.Equal(t, int64(15), outcome.Usage.TotalTokens)
	require.NotEmpty(t, signals)
	assert.Equal(t, SignalRoleActive{Role: "boss"}, signals[0])
}

func TestModelRuntime_ToolExecution(t *testing.T) {
	h := testHierarchy(t)
	m := model.NewMockModel("mock", "test")
	m.Enqueue(
		// Move to the writer, who calls its tool, then answers.
		model.Response{ToolCalls: []model.ToolCall{
			{ID: "t1", Name: "transfer_to_writer", Arguments: `{"message":"write it"}`},
		}, FinishReason: "tool_calls"},
		model.Response{ToolCalls: []model.ToolCall{
			{ID: "t2", Name: "echo", Arguments: `{"text":"hi"}`},
		}, FinishReason: "tool_calls"},
		model.Response{Text: "done", FinishReason: "stop"},
	)

	var handoffs []string
	r := NewModelRuntime(m)
	signals, outcome := collect(t, r, Request{
		Message:   "go",
		Hierarchy: h,
		OnHandoff: passthroughHandoff(h, &handoffs),
	})

	require.NoError(t, outcome.Err)
	assert.Equal(t, "done", outcome.Output)
	assert.Equal(t, []string{"boss->writer"}, handoffs)

	var invoked, completed bool
	for _, s := range signals {
		switch sig := s.(type) {
		case SignalToolInvoked:
			invoked = true
			assert.Equal(t, "echo", sig.Name)
			assert.Equal(t, "t2", sig.CallID)
		case SignalToolCompleted:
			completed = true
		}
	}
	assert.True(t, invoked)
	assert.True(t, completed)

	// The tool result was fed back to the model on the following turn.
	reqs := m.Requests()
	require.Len(t, reqs, 3)
	last := reqs[2].Messages[len(reqs[2].Messages)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "echo: hi", last.Text)
}

func TestModelRuntime_TransferSignals(t *testing.T) {
	h := testHierarchy(t)
	m := model.NewMockModel("mock", "test")
	m.Enqueue(
		model.Response{ToolCalls: []model.ToolCall{
			{ID: "t1", Name: "transfer_to_writer", Arguments: `{"message":"draft","kind":"task"}`},
		}, FinishReason: "tool_calls"},
		model.Response{Text: "draft done", FinishReason: "stop"},
	)

	var handoffs []string
	r := NewModelRuntime(m)
	signals, outcome := collect(t, r, Request{
		Message: "go", Hierarchy: h, OnHandoff: passthroughHandoff(h, &handoffs),
	})

	require.NoError(t, outcome.Err)
	var handoff *SignalHandoff
	var activations []string
	for _, s := range signals {
		switch sig := s.(type) {
		case SignalHandoff:
			cp := sig
			handoff = &cp
		case SignalRoleActive:
			activations = append(activations, sig.Role)
		}
	}
	require.NotNil(t, handoff)
	assert.Equal(t, "boss", handoff.From)
	assert.Equal(t, "writer", handoff.To)
	assert.Equal(t, core.KindTask, handoff.Envelope.Kind)
	assert.Equal(t, "draft", handoff.Envelope.DecodePayload()["message"])
	assert.Equal(t, []string{"boss", "writer"}, activations)
}

func TestModelRuntime_HandoffErrorTerminates(t *testing.T) {
	h := testHierarchy(t)
	m := model.NewMockModel("mock", "test")
	m.Enqueue(model.Response{ToolCalls: []model.ToolCall{
		{ID: "t1", Name: "transfer_to_writer", Arguments: `{"message":"x"}`},
	}, FinishReason: "tool_calls"})

	denied := errors.New("not allowed")
	r := NewModelRuntime(m)
	_, outcome := collect(t, r, Request{
		Message:   "go",
		Hierarchy: h,
		OnHandoff: func(_, _ string, _ core.Envelope) (*workforce.Role, error) {
			return nil, denied
		},
	})

	require.ErrorIs(t, outcome.Err, denied)
	assert.Empty(t, outcome.Output)
}

func TestModelRuntime_TurnLimit(t *testing.T) {
	h := testHierarchy(t)
	m := model.NewMockModel("mock", "test")
	var handoffs []string
	// Every turn transfers and never answers.
	for i := 0; i < 4; i++ {
		m.Enqueue(
			model.Response{ToolCalls: []model.ToolCall{
				{ID: "a", Name: "transfer_to_writer", Arguments: `{"message":"x"}`},
			}, FinishReason: "tool_calls"},
			model.Response{ToolCalls: []model.ToolCall{
				{ID: "b", Name: "transfer_to_boss", Arguments: `{"message":"y"}`},
			}, FinishReason: "tool_calls"},
		)
	}

	r := NewModelRuntime(m)
	_, outcome := collect(t, r, Request{
		Message: "go", Hierarchy: h, MaxTurns: 3,
		OnHandoff: passthroughHandoff(h, &handoffs),
	})

	var limitErr *TurnLimitError
	require.ErrorAs(t, outcome.Err, &limitErr)
	assert.Equal(t, 3, limitErr.Limit)
}

func TestModelRuntime_UnknownToolReported(t *testing.T) {
	h := testHierarchy(t)
	m := model.NewMockModel("mock", "test")
	m.Enqueue(
		model.Response{ToolCalls: []model.ToolCall{
			{ID: "t1", Name: "get_secrets", Arguments: `{}`},
		}, FinishReason: "tool_calls"},
		model.Response{Text: "ok", FinishReason: "stop"},
	)

	r := NewModelRuntime(m)
	_, outcome := collect(t, r, Request{Message: "go", Hierarchy: h})
	require.NoError(t, outcome.Err)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	last := reqs[1].Messages[len(reqs[1].Messages)-1]
	assert.Contains(t, last.Text, "not available")
}

func TestBuildEnvelope_Defaults(t *testing.T) {
	h := testHierarchy(t)
	boss, _ := h.Role("boss")
	writer, _ := h.Role("writer")
	critic, _ := h.Role("critic")

	// Reviewer without an explicit kind sends an evaluation.
	env := buildEnvelope(critic, "boss", h, map[string]any{"verdict": "PASS"})
	assert.Equal(t, core.KindEvaluation, env.Kind)

	// Transfer back to the entry role defaults to a result.
	env = buildEnvelope(writer, "boss", h, map[string]any{"message": "done"})
	assert.Equal(t, core.KindResult, env.Kind)

	// Everything else defaults to a task.
	env = buildEnvelope(boss, "writer", h, map[string]any{"message": "go"})
	assert.Equal(t, core.KindTask, env.Kind)

	// An explicit valid kind wins.
	env = buildEnvelope(boss, "writer", h, map[string]any{"kind": "FEEDBACK", "message": "redo"})
	assert.Equal(t, core.KindFeedback, env.Kind)
}

func TestScriptedRuntime_ReplaysScript(t *testing.T) {
	h := testHierarchy(t)
	var handoffs []string
	s := &ScriptedRuntime{
		Steps: []ScriptStep{
			{Signal: SignalTextDelta{Content: "thinking"}},
			{Transfer: &ScriptTransfer{To: "writer", Envelope: core.NewEnvelope(core.KindTask, nil)}},
			{Signal: SignalTextDelta{Content: "writing"}},
		},
		Output: "final text",
		Usage:  model.TokenUsage{TotalTokens: 42},
	}

	signals, outcome := collect(t, s, Request{
		Hierarchy: h, OnHandoff: passthroughHandoff(h, &handoffs),
	})

	require.NoError(t, outcome.Err)
	assert.Equal(t, "final text", outcome.Output)
	assert.Equal(t, int64(42), outcome.Usage.TotalTokens)
	assert.Equal(t, []string{"boss->writer"}, handoffs)
	require.Len(t, signals, 4) // delta, handoff, role active, delta
}

func TestScriptedRuntime_HandoffErrorStops(t *testing.T) {
	h := testHierarchy(t)
	denied := errors.New("denied")
	s := &ScriptedRuntime{
		Steps: []ScriptStep{
			{Transfer: &ScriptTransfer{To: "writer"}},
			{Signal: SignalTextDelta{Content: "never emitted"}},
		},
		Output: "unreached",
	}

	signals, outcome := collect(t, s, Request{
		Hierarchy: h,
		OnHandoff: func(_, _ string, _ core.Envelope) (*workforce.Role, error) {
			return nil, denied
		},
	})

	require.ErrorIs(t, outcome.Err, denied)
	assert.Empty(t, signals)
}

package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/logging"
	"github.com/onlyoneaman/ai-team/model"
	"github.com/onlyoneaman/ai-team/workforce"
)

// TransferToolPrefix names the synthetic transfer tools exposed to each
// role. transfer_to_founder, transfer_to_seo_analyst, and so on.
const TransferToolPrefix = "transfer_to_"

// Options configures a ModelRuntime.
type Options struct {
	// Logger receives per-turn debug output. Defaults to a no-op logger.
	Logger logging.Logger
}

// ModelRuntime drives the agent loop with a model.Model. Each role sees its
// own instructions, its own tools, and one synthetic transfer tool per
// authorized target; tool calls with the transfer prefix are routed through
// the handoff callback instead of being executed.
type ModelRuntime struct {
	model  model.Model
	logger logging.Logger
}

// NewModelRuntime creates a runtime on top of the given model.
func NewModelRuntime(m model.Model, optFns ...func(o *Options)) *ModelRuntime {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelRuntime{model: m, logger: opts.Logger}
}

// Run implements Runtime.
func (r *ModelRuntime) Run(ctx context.Context, req Request) (<-chan Signal, <-chan Outcome) {
	signals := make(chan Signal, 32)
	outcome := make(chan Outcome, 1)

	go func() {
		defer close(outcome)
		finish := func(o Outcome) {
			close(signals)
			outcome <- o
		}

		maxTurns := req.MaxTurns
		if maxTurns <= 0 {
			maxTurns = DefaultMaxTurns
		}
		current, ok := req.Hierarchy.Role(req.Hierarchy.Entry())
		if !ok {
			finish(Outcome{Err: fmt.Errorf("entry role %q not found", req.Hierarchy.Entry())})
			return
		}

		var usage model.TokenUsage
		messages := []model.Message{{Role: "user", Text: req.Message}}
		signals <- SignalRoleActive{Role: current.ID}

		for turn := 0; turn < maxTurns; turn++ {
			mreq := model.Request{
				Instructions: r.instructionsFor(current, req.Hierarchy),
				Messages:     messages,
				Tools:        r.toolDefinitions(current, req.Hierarchy),
				Stream:       req.Stream,
			}
			respCh, errCh := r.model.Generate(ctx, mreq)

			var final *model.Response
			for resp := range respCh {
				if resp.Partial {
					if resp.Text != "" {
						signals <- SignalTextDelta{Content: resp.Text}
					}
					continue
				}
				f := resp
				final = &f
			}
			if err := <-errCh; err != nil {
				finish(Outcome{Usage: usage, Err: err})
				return
			}
			if final == nil {
				finish(Outcome{Usage: usage, Err: fmt.Errorf("model produced no response")})
				return
			}
			if final.Usage != nil {
				usage.Add(*final.Usage)
			}
			r.logger.Debug("turn complete", "turn", turn, "role", current.ID, "tool_calls", len(final.ToolCalls))

			messages = append(messages, model.Message{
				Role:      "assistant",
				Text:      final.Text,
				ToolCalls: final.ToolCalls,
			})

			if len(final.ToolCalls) == 0 {
				finish(Outcome{Output: final.Text, Usage: usage})
				return
			}

			for _, call := range final.ToolCalls {
				args := decodeArguments(call.Arguments)

				if target, isTransfer := strings.CutPrefix(call.Name, TransferToolPrefix); isTransfer {
					env := buildEnvelope(current, target, req.Hierarchy, args)
					next, err := req.OnHandoff(current.ID, target, env)
					if err != nil {
						finish(Outcome{Usage: usage, Err: err})
						return
					}
					signals <- SignalHandoff{From: current.ID, To: next.ID, Envelope: env}
					messages = append(messages, model.Message{
						Role:       "tool",
						ToolCallID: call.ID,
						Text:       fmt.Sprintf("Control transferred to %s.", next.ID),
					})
					current = next
					signals <- SignalRoleActive{Role: current.ID}
					continue
				}

				signals <- SignalToolInvoked{CallID: call.ID, Name: call.Name}
				resultText := r.executeTool(ctx, current, call.Name, args)
				signals <- SignalToolCompleted{CallID: call.ID, Name: call.Name}
				messages = append(messages, model.Message{
					Role:       "tool",
					ToolCallID: call.ID,
					Text:       resultText,
				})
			}
		}
		finish(Outcome{Usage: usage, Err: &TurnLimitError{Limit: maxTurns}})
	}()

	return signals, outcome
}

func (r *ModelRuntime) executeTool(ctx context.Context, role *workforce.Role, name string, args map[string]any) string {
	t, ok := role.Tools[name]
	if !ok {
		return fmt.Sprintf("Tool %q is not available to %s.", name, role.ID)
	}
	result, err := t.Call(ctx, args)
	if err != nil {
		r.logger.Warn("tool failed", "tool", name, "role", role.ID, "error", err)
		return fmt.Sprintf("Tool error: %v", err)
	}
	if s, ok := result.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", result)
}

// instructionsFor appends transfer guidance to the role's own instructions.
func (r *ModelRuntime) instructionsFor(role *workforce.Role, h *workforce.Hierarchy) string {
	targets := h.AuthorizedTargets(role.ID)
	if len(targets) == 0 {
		return role.Instructions
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = TransferToolPrefix + t
	}
	return fmt.Sprintf("%s\n\nTo hand the conversation to another team member, call one of: %s.",
		role.Instructions, strings.Join(names, ", "))
}

// toolDefinitions exposes the role's tools plus one transfer tool per
// authorized target.
func (r *ModelRuntime) toolDefinitions(role *workforce.Role, h *workforce.Hierarchy) []model.ToolDefinition {
	var defs []model.ToolDefinition
	for _, t := range role.Tools {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	for _, target := range h.AuthorizedTargets(role.ID) {
		defs = append(defs, model.ToolDefinition{
			Name:        TransferToolPrefix + target,
			Description: fmt.Sprintf("Transfer the conversation to %s with a message describing the task, result, or verdict.", target),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{
						"type":        "string",
						"description": "The content handed to the receiving role.",
					},
					"kind": map[string]any{
						"type":        "string",
						"enum":        []string{"task", "result", "evaluation", "feedback"},
						"description": "Intent of the transfer.",
					},
					"verdict": map[string]any{
						"type":        "string",
						"enum":        []string{"PASS", "REVISE"},
						"description": "Verdict when reporting an evaluation.",
					},
					"feedback": map[string]any{
						"type":        "string",
						"description": "Revision feedback when the verdict is REVISE.",
					},
				},
				"required": []string{"message"},
			},
		})
	}
	return defs
}

// buildEnvelope derives the transfer envelope from the call arguments. An
// explicit valid kind wins; otherwise reviewers send evaluations, transfers
// back to the entry role are results, and everything else is a task.
func buildEnvelope(sender *workforce.Role, target string, h *workforce.Hierarchy, args map[string]any) core.Envelope {
	kind := core.EnvelopeKind("")
	if k, ok := args["kind"].(string); ok {
		kind = core.EnvelopeKind(strings.ToLower(strings.TrimSpace(k)))
	}
	if !kind.Valid() {
		switch {
		case sender.Type == workforce.RoleReviewer:
			kind = core.KindEvaluation
		case target == h.Entry():
			kind = core.KindResult
		default:
			kind = core.KindTask
		}
	}
	payload := make(map[string]any, len(args))
	for k, v := range args {
		if k == "kind" {
			continue
		}
		payload[k] = v
	}
	return core.NewEnvelope(kind, payload)
}

func decodeArguments(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]any{core.RawPayloadKey: raw}
	}
	return args
}

package session

import (
	"encoding/json"
	"time"

	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/pricing"
)

// persistArtifacts writes the final run records: the response text, the
// trace summary, and the cleaned-up conversation. The event journal has been
// appended throughout the run. Persistence is best effort; failures are
// logged and never fail the run.
func (s *Session) persistArtifacts(input string) {
	s.mu.Lock()
	response := s.response
	events := append([]core.Event(nil), s.events...)
	usage := s.usage
	start, end := s.startTime, s.endTime
	router := s.router
	s.mu.Unlock()

	if err := s.store.Save(s.runID, "response.md", []byte(response)); err != nil {
		s.logger.Warn("failed to persist response", "error", err)
	}

	// The handoff trace is the authoritative participation record; fold its
	// roles in before summarizing.
	var handoffs []core.TraceStep
	var taskState any
	if router != nil {
		handoffs = router.Trace()
		for _, step := range handoffs {
			s.addRole(step.Role)
		}
		taskState = router.Task()
	}
	roles := s.rolesInvolved()

	usageReport := map[string]any{
		"input_tokens":  usage.PromptTokens,
		"output_tokens": usage.CompletionTokens,
		"total_tokens":  usage.TotalTokens,
	}
	estimate := pricing.EstimateCost(usage.PromptTokens, usage.CompletionTokens, s.modelNm)
	usageReport["model"] = estimate.Model
	usageReport["total_estimated_usd_cost"] = estimate.CostUSD

	trace := map[string]any{
		"run_id":         s.runID,
		"company":        s.wf.Company.Name,
		"start_time":     start.Format(time.RFC3339Nano),
		"end_time":       end.Format(time.RFC3339Nano),
		"duration_ms":    end.Sub(start).Milliseconds(),
		"roles_involved": roles,
		"event_count":    len(events),
		"usage":          usageReport,
		"handoffs":       handoffs,
		"task_state":     taskState,
	}
	s.saveJSON("trace.json", trace)

	toolCalls := make([]map[string]any, 0)
	for _, ev := range events {
		if ev.Type != core.EventToolCall {
			continue
		}
		toolCalls = append(toolCalls, map[string]any{
			"role": ev.Role,
			"tool": ev.Data["tool"],
		})
	}
	conversation := map[string]any{
		"input":      input,
		"output":     response,
		"roles":      roles,
		"handoffs":   handoffs,
		"tool_calls": toolCalls,
	}
	s.saveJSON("conversation.json", conversation)
}

func (s *Session) saveJSON(name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Warn("failed to encode artifact", "name", name, "error", err)
		return
	}
	if err := s.store.Save(s.runID, name, data); err != nil {
		s.logger.Warn("failed to persist artifact", "name", name, "error", err)
	}
}

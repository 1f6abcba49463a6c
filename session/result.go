package session

import (
	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/model"
	"github.com/onlyoneaman/ai-team/pricing"
)

// Result is the final summary of a run, available once the event stream has
// been drained.
type Result struct {
	RunID         string           `json:"run_id"`
	State         State            `json:"state"`
	Response      string           `json:"response"`
	RolesInvolved []string         `json:"roles_involved"`
	EventCount    int              `json:"event_count"`
	DurationMS    int64            `json:"duration_ms"`
	Usage         model.TokenUsage `json:"usage"`
	Cost          pricing.Estimate `json:"cost"`
	ArtifactsDir  string           `json:"artifacts_dir,omitempty"`
}

// Result builds the summary from the session's current state. Calling it
// before the run finished reports the in-flight state.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var durationMS int64
	if !s.startTime.IsZero() && !s.endTime.IsZero() {
		durationMS = s.endTime.Sub(s.startTime).Milliseconds()
	}
	return &Result{
		RunID:         s.runID,
		State:         s.state,
		Response:      s.response,
		RolesInvolved: append([]string(nil), s.roles...),
		EventCount:    len(s.events),
		DurationMS:    durationMS,
		Usage:         s.usage,
		Cost:          pricing.EstimateCost(s.usage.PromptTokens, s.usage.CompletionTokens, s.modelNm),
		ArtifactsDir:  s.ArtifactsDir(),
	}
}

// Events returns a copy of the events recorded so far.
func (s *Session) Events() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Event(nil), s.events...)
}

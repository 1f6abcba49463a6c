package core

import "fmt"

// TaskStatus is the revision state of a task.
type TaskStatus string

const (
	// StatusInProgress is the initial status of every task.
	StatusInProgress TaskStatus = "in_progress"
	// StatusNeedsRevision marks a deliverable rejected by a reviewer.
	StatusNeedsRevision TaskStatus = "needs_revision"
	// StatusDone is terminal for the run.
	StatusDone TaskStatus = "done"
)

// DefaultMaxIterations bounds the revision loop.
const DefaultMaxIterations = 3

// TaskState is the per-run mutable progress record. It is owned exclusively
// by one session and mutated only through the handoff router; the router's
// lock covers concurrent access during a run.
type TaskState struct {
	Goal          string              `json:"goal"`
	TaskType      string              `json:"task_type,omitempty"`
	Iteration     int                 `json:"iteration"`
	MaxIterations int                 `json:"max_iterations"`
	Status        TaskStatus          `json:"status"`
	Artifacts     map[string]Envelope `json:"artifacts"`
	Feedback      []string            `json:"feedback"`
}

// NewTaskState creates a task in the in_progress state. maxIterations <= 0
// falls back to DefaultMaxIterations.
func NewTaskState(goal, taskType string, maxIterations int) *TaskState {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &TaskState{
		Goal:          goal,
		TaskType:      taskType,
		MaxIterations: maxIterations,
		Status:        StatusInProgress,
		Artifacts:     map[string]Envelope{},
		Feedback:      []string{},
	}
}

// ArtifactKey builds the versioned key a role's deliverable is stored under
// at the current iteration.
func (t *TaskState) ArtifactKey(role string) string {
	return fmt.Sprintf("%s_v%d", role, t.Iteration)
}

// StoreArtifact records an envelope under key. The artifact map is
// append-only: an existing key is never overwritten. Reports whether the
// envelope was stored.
func (t *TaskState) StoreArtifact(key string, env Envelope) bool {
	if _, exists := t.Artifacts[key]; exists {
		return false
	}
	t.Artifacts[key] = env
	return true
}

// RequestRevision applies a REVISE verdict: the status moves to
// needs_revision and, while the iteration ceiling has not been reached, the
// iteration advances and feedback is appended. Once done, the task stays done.
func (t *TaskState) RequestRevision(feedback string) {
	if t.Status == StatusDone {
		return
	}
	t.Status = StatusNeedsRevision
	if t.Iteration >= t.MaxIterations {
		return
	}
	t.Iteration++
	if feedback != "" {
		t.Feedback = append(t.Feedback, feedback)
	}
}

// MarkDone applies a PASS verdict. Done is terminal.
func (t *TaskState) MarkDone() { t.Status = StatusDone }

// Snapshot returns a deep copy safe to serialize after the run.
func (t *TaskState) Snapshot() TaskState {
	cp := *t
	cp.Artifacts = make(map[string]Envelope, len(t.Artifacts))
	for k, v := range t.Artifacts {
		cp.Artifacts[k] = v
	}
	cp.Feedback = append([]string(nil), t.Feedback...)
	return cp
}

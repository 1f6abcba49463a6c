// Package workforce defines the static role graph of an AI team: role
// identities, the authorization edges between them, and the tenant-driven
// factory that templates role instructions from company data. A Hierarchy is
// validated once at startup and immutable afterwards, so any number of
// concurrent sessions can share it.
package workforce

import "github.com/onlyoneaman/ai-team/tool"

// RoleType categorizes a role's position in the workflow.
type RoleType string

const (
	// RoleOrchestrator is the single entry point that owns the user request.
	RoleOrchestrator RoleType = "orchestrator"
	// RoleLead coordinates a sub-team and reports back to the orchestrator.
	RoleLead RoleType = "lead"
	// RoleWorker produces deliverables and reports back to its parent.
	RoleWorker RoleType = "worker"
	// RoleReviewer evaluates deliverables and issues PASS / REVISE verdicts.
	RoleReviewer RoleType = "reviewer"
)

// Role is one named participant in the workflow. Roles are immutable for the
// lifetime of a run; Targets lists the role ids this role is authorized to
// transfer to.
type Role struct {
	ID           string
	Name         string
	Type         RoleType
	Instructions string
	Tools        map[string]tool.Tool
	Targets      []string
}

// AuthorizedTo reports whether this role may transfer to target.
func (r *Role) AuthorizedTo(target string) bool {
	for _, t := range r.Targets {
		if t == target {
			return true
		}
	}
	return false
}

package workforce

import "fmt"

// ConfigurationError reports a malformed hierarchy or tenant dataset. It is
// fatal at startup and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// Hierarchy is the static directed graph of roles for one tenant. Cycles are
// permitted (a lead may transfer to a worker and back); the task iteration
// ceiling bounds any cycle at run time.
type Hierarchy struct {
	roles map[string]*Role
	entry string
}

// NewHierarchy validates the role graph and returns it. Validation failures
// are *ConfigurationError:
//   - the entry role must exist and have type orchestrator
//   - the entry role is the only orchestrator
//   - every transfer target must reference an existing role
//   - every non-orchestrator role needs at least one authorized target
//     (otherwise control could never return from it)
func NewHierarchy(entry string, roles ...*Role) (*Hierarchy, error) {
	byID := make(map[string]*Role, len(roles))
	for _, r := range roles {
		if r.ID == "" {
			return nil, configErrorf("role %q has no id", r.Name)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, configErrorf("duplicate role id %q", r.ID)
		}
		byID[r.ID] = r
	}

	entryRole, ok := byID[entry]
	if !ok {
		return nil, configErrorf("entry role %q not defined", entry)
	}
	if entryRole.Type != RoleOrchestrator {
		return nil, configErrorf("entry role %q must be an orchestrator, got %s", entry, entryRole.Type)
	}

	for _, r := range byID {
		if r.Type == RoleOrchestrator && r.ID != entry {
			return nil, configErrorf("hierarchy must have exactly one orchestrator, found extra %q", r.ID)
		}
		if r.Type != RoleOrchestrator && len(r.Targets) == 0 {
			return nil, configErrorf("role %q has no authorized transfer targets", r.ID)
		}
		for _, target := range r.Targets {
			if _, ok := byID[target]; !ok {
				return nil, configErrorf("role %q targets unknown role %q", r.ID, target)
			}
		}
	}

	return &Hierarchy{roles: byID, entry: entry}, nil
}

// Entry returns the orchestrator's role id.
func (h *Hierarchy) Entry() string { return h.entry }

// Role returns a role by id.
func (h *Hierarchy) Role(id string) (*Role, bool) {
	r, ok := h.roles[id]
	return r, ok
}

// AuthorizedTargets returns the set of role ids the given role may transfer
// to; unknown roles have none.
func (h *Hierarchy) AuthorizedTargets(id string) []string {
	r, ok := h.roles[id]
	if !ok {
		return nil
	}
	return append([]string(nil), r.Targets...)
}

// RoleType returns the type of a role, or "" if unknown.
func (h *Hierarchy) RoleType(id string) RoleType {
	if r, ok := h.roles[id]; ok {
		return r.Type
	}
	return ""
}

// RoleIDs returns all role ids in the hierarchy.
func (h *Hierarchy) RoleIDs() []string {
	ids := make([]string, 0, len(h.roles))
	for id := range h.roles {
		ids = append(ids, id)
	}
	return ids
}

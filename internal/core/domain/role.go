package domain

import (
	"errors"
	"time"
)

var ErrRoleNotFound = errors.New("role not found")
var ErrRoleExists = errors.New("role already exists")

// ErrModuleUnchanged signals that an add/remove of an access module modified
// nothing: either the role does not exist or the module was already in the
// requested state. The store cannot distinguish the two cases from a single
// atomic update, and the API deliberately reports them as one condition.
var ErrModuleUnchanged = errors.New("role not found or module unchanged")

// Role is a named bundle of access modules that users reference.
type Role struct {
	ID            string    `json:"id"`
	RoleName      string    `json:"roleName"`
	AccessModules []string  `json:"accessModules"`
	CreatedAt     time.Time `json:"createdAt"`
	Active        bool      `json:"active"`
}

// DedupModules collapses duplicates while preserving first-seen order.
// accessModules is conceptually a set; storage keeps it as an ordered array.
func DedupModules(modules []string) []string {
	seen := make(map[string]struct{}, len(modules))
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// HasModule reports whether the role grants the given access module.
func (r *Role) HasModule(module string) bool {
	for _, m := range r.AccessModules {
		if m == module {
			return true
		}
	}
	return false
}

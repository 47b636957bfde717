package ports

import (
	"context"

	"github.com/accessly/rbac-service/internal/core/domain"
)

// RoleRepository defines persistence for roles and their access-module sets.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	// Search returns roles whose roleName matches the given text
	// case-insensitively. Empty text returns every role.
	Search(ctx context.Context, text string) ([]domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	// Update applies a partial $set-style patch; fields absent from the
	// patch are left untouched. Returns the updated role.
	Update(ctx context.Context, id string, fields map[string]any) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
	// ReplaceModules overwrites the whole accessModules set.
	ReplaceModules(ctx context.Context, id string, modules []string) (*domain.Role, error)
	// AddModule adds the module only if absent (atomic set-add). Returns
	// domain.ErrModuleUnchanged when nothing was modified.
	AddModule(ctx context.Context, id, module string) (*domain.Role, error)
	// RemoveModule removes every occurrence of the module. Returns
	// domain.ErrModuleUnchanged when nothing was modified.
	RemoveModule(ctx context.Context, id, module string) (*domain.Role, error)
}

package ports

import (
	"context"

	"github.com/accessly/rbac-service/internal/core/domain"
)

type RoleService interface {
	Create(ctx context.Context, roleName string, accessModules []string) (*domain.Role, error)
	List(ctx context.Context, search string) ([]domain.Role, error)
	Get(ctx context.Context, id string) (*domain.Role, error)
	Update(ctx context.Context, id string, fields map[string]any) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
	ReplaceModules(ctx context.Context, id string, modules []string) (*domain.Role, error)
	AddModule(ctx context.Context, id, module string) (*domain.Role, error)
	RemoveModule(ctx context.Context, id, module string) (*domain.Role, error)
}

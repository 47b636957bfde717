package ports

import (
	"context"

	"github.com/accessly/rbac-service/internal/core/domain"
)

// CreateUserInput carries the fields accepted when creating a user directly.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	RoleID    string
	Active    bool
}

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	List(ctx context.Context, search string) ([]domain.UserWithRole, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// BulkSetField applies one field value to every user; the count of
	// modified users is a valid result even when zero.
	BulkSetField(ctx context.Context, field string, value any) (int64, error)
	BulkApplyPatches(ctx context.Context, patches []UserPatch) (int64, error)
	// CheckAccess answers whether the user's role grants the module.
	CheckAccess(ctx context.Context, userID, module string) (bool, error)
}

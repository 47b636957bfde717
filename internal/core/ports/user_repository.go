package ports

import (
	"context"

	"github.com/accessly/rbac-service/internal/core/domain"
)

// UserPatch is one entry of a heterogeneous bulk update.
type UserPatch struct {
	UserID string
	Fields map[string]any
}

// UserRepository defines persistence for users, the user/role join, and bulk
// write operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// SearchWithRoles joins each user to its role and filters where the
	// text matches any of firstName, lastName, email, the role's name, or
	// any of its access modules. Users with dangling role references are
	// dropped by the join.
	SearchWithRoles(ctx context.Context, text string) ([]domain.UserWithRole, error)
	// FindByID returns the user with RoleDetails populated when the role
	// reference resolves, and nil RoleDetails when it dangles.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// UpdateAll applies the same patch to every user unconditionally and
	// reports the number of modified documents.
	UpdateAll(ctx context.Context, fields map[string]any) (int64, error)
	// BulkUpdate applies one patch per user id in a single batched write.
	// A malformed id fails the whole batch.
	BulkUpdate(ctx context.Context, patches []UserPatch) (int64, error)
	// HasModule resolves the user's role and tests module membership.
	// Returns domain.ErrUserNotFound when the user does not exist or its
	// role reference cannot be resolved.
	HasModule(ctx context.Context, userID, module string) (bool, error)
}

package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/accessly/rbac-service/internal/api/metrics"
	"github.com/accessly/rbac-service/internal/core/domain"
	"github.com/accessly/rbac-service/internal/core/ports"
)

// UserService implements user CRUD, the user/role joined search, bulk
// updates, and the access query.
type UserService struct {
	repo     ports.UserRepository
	roleRepo ports.RoleRepository
	logger   zerolog.Logger
}

func NewUserService(repo ports.UserRepository, roleRepo ports.RoleRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, roleRepo: roleRepo, logger: logger}
}

func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	// The role reference must resolve at creation time. It is never
	// re-validated afterwards.
	if _, err := s.roleRepo.FindByID(ctx, input.RoleID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		RoleID:       input.RoleID,
		Active:       input.Active,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role_id", created.RoleID).Msg("user created")
	return created, nil
}

func (s *UserService) List(ctx context.Context, search string) ([]domain.UserWithRole, error) {
	return s.repo.SearchWithRoles(ctx, search)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	delete(fields, "_id")
	delete(fields, "id")

	// Stripping can leave nothing to set; read back unchanged.
	if len(fields) == 0 {
		return s.repo.FindByID(ctx, id)
	}

	// A password in the patch is hashed before it reaches the store, the
	// same as on both create paths.
	if plain, ok := fields["password"].(string); ok {
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["password"] = string(hash)
	}

	return s.repo.Update(ctx, id, fields)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) BulkSetField(ctx context.Context, field string, value any) (int64, error) {
	count, err := s.repo.UpdateAll(ctx, map[string]any{field: value})
	if err != nil {
		return 0, err
	}
	metrics.BulkUserUpdatesTotal.WithLabelValues("same").Add(float64(count))
	s.logger.Info().Str("field", field).Int64("modified", count).Msg("bulk same-field update")
	return count, nil
}

func (s *UserService) BulkApplyPatches(ctx context.Context, patches []ports.UserPatch) (int64, error) {
	for i := range patches {
		delete(patches[i].Fields, "_id")
		delete(patches[i].Fields, "id")
	}

	count, err := s.repo.BulkUpdate(ctx, patches)
	if err != nil {
		return 0, err
	}
	metrics.BulkUserUpdatesTotal.WithLabelValues("different").Add(float64(count))
	s.logger.Info().Int("patches", len(patches)).Int64("modified", count).Msg("bulk per-user update")
	return count, nil
}

func (s *UserService) CheckAccess(ctx context.Context, userID, module string) (bool, error) {
	has, err := s.repo.HasModule(ctx, userID, module)
	if err != nil {
		metrics.AccessChecksTotal.WithLabelValues("not_found").Inc()
		return false, err
	}

	result := "denied"
	if has {
		result = "granted"
	}
	metrics.AccessChecksTotal.WithLabelValues(result).Inc()
	return has, nil
}

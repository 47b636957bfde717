package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/accessly/rbac-service/internal/core/domain"
	"github.com/accessly/rbac-service/internal/core/ports"
)

// RoleService implements role CRUD and the access-module set mutations.
type RoleService struct {
	repo   ports.RoleRepository
	logger zerolog.Logger
}

func NewRoleService(repo ports.RoleRepository, logger zerolog.Logger) *RoleService {
	return &RoleService{repo: repo, logger: logger}
}

func (s *RoleService) Create(ctx context.Context, roleName string, accessModules []string) (*domain.Role, error) {
	role := &domain.Role{
		RoleName:      roleName,
		AccessModules: domain.DedupModules(accessModules),
		CreatedAt:     time.Now().UTC(),
		Active:        true,
	}

	created, err := s.repo.Create(ctx, role)
	if err != nil {
		s.logger.Error().Err(err).Str("role_name", roleName).Msg("failed to create role")
		return nil, err
	}

	s.logger.Info().Str("role_id", created.ID).Str("role_name", created.RoleName).Msg("role created")
	return created, nil
}

func (s *RoleService) List(ctx context.Context, search string) ([]domain.Role, error) {
	return s.repo.Search(ctx, search)
}

func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RoleService) Update(ctx context.Context, id string, fields map[string]any) (*domain.Role, error) {
	// id and createdAt are immutable regardless of what the patch carries.
	delete(fields, "_id")
	delete(fields, "id")
	delete(fields, "createdAt")

	if modules, ok := fields["accessModules"].([]any); ok {
		fields["accessModules"] = domain.DedupModules(toStrings(modules))
	}

	// Stripping can leave nothing to set; read back unchanged.
	if len(fields) == 0 {
		return s.repo.FindByID(ctx, id)
	}

	return s.repo.Update(ctx, id, fields)
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// No cascade: users referencing the role keep their now-dangling
	// reference and simply drop out of joined views.
	s.logger.Info().Str("role_id", id).Msg("role deleted")
	return nil
}

func (s *RoleService) ReplaceModules(ctx context.Context, id string, modules []string) (*domain.Role, error) {
	return s.repo.ReplaceModules(ctx, id, domain.DedupModules(modules))
}

func (s *RoleService) AddModule(ctx context.Context, id, module string) (*domain.Role, error) {
	role, err := s.repo.AddModule(ctx, id, module)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("role_id", id).Str("module", module).Msg("access module added")
	return role, nil
}

func (s *RoleService) RemoveModule(ctx context.Context, id, module string) (*domain.Role, error) {
	role, err := s.repo.RemoveModule(ctx, id, module)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("role_id", id).Str("module", module).Msg("access module removed")
	return role, nil
}

// toStrings narrows a decoded JSON array to its string members.
func toStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/accessly/rbac-service/internal/core/domain"
)

type stubRoleRepo struct {
	roles  map[string]*domain.Role
	nextID int
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role), nextID: 1}
}

func cloneRole(r *domain.Role) *domain.Role {
	if r == nil {
		return nil
	}
	clone := *r
	clone.AccessModules = append([]string(nil), r.AccessModules...)
	return &clone
}

func (s *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	for _, existing := range s.roles {
		if existing.RoleName == role.RoleName {
			return nil, domain.ErrRoleExists
		}
	}
	copy := cloneRole(role)
	copy.ID = string(rune('0' + s.nextID))
	s.nextID++
	s.roles[copy.ID] = cloneRole(copy)
	return copy, nil
}

func (s *stubRoleRepo) Search(_ context.Context, _ string) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, *cloneRole(r))
	}
	return out, nil
}

func (s *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return cloneRole(r), nil
}

func (s *stubRoleRepo) Update(_ context.Context, id string, fields map[string]any) (*domain.Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	if name, ok := fields["roleName"].(string); ok {
		r.RoleName = name
	}
	if active, ok := fields["active"].(bool); ok {
		r.Active = active
	}
	if modules, ok := fields["accessModules"].([]string); ok {
		r.AccessModules = modules
	}
	return cloneRole(r), nil
}

func (s *stubRoleRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *stubRoleRepo) ReplaceModules(_ context.Context, id string, modules []string) (*domain.Role, error) {
	return s.Update(context.Background(), id, map[string]any{"accessModules": modules})
}

func (s *stubRoleRepo) AddModule(_ context.Context, id, module string) (*domain.Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return nil, domain.ErrModuleUnchanged
	}
	if r.HasModule(module) {
		return nil, domain.ErrModuleUnchanged
	}
	r.AccessModules = append(r.AccessModules, module)
	return cloneRole(r), nil
}

func (s *stubRoleRepo) RemoveModule(_ context.Context, id, module string) (*domain.Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return nil, domain.ErrModuleUnchanged
	}
	kept := make([]string, 0, len(r.AccessModules))
	for _, m := range r.AccessModules {
		if m != module {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(r.AccessModules) {
		return nil, domain.ErrModuleUnchanged
	}
	r.AccessModules = kept
	return cloneRole(r), nil
}

func TestRoleService_Create_DedupsModules(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	role, err := svc.Create(context.Background(), "editor", []string{"reports", "reports", "billing"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !reflect.DeepEqual(role.AccessModules, []string{"reports", "billing"}) {
		t.Fatalf("expected deduped modules, got %v", role.AccessModules)
	}
	if !role.Active {
		t.Fatalf("expected new role to be active")
	}
	if role.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}
}

func TestRoleService_Create_DuplicateName(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	if _, err := svc.Create(context.Background(), "editor", nil); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), "editor", nil); err != domain.ErrRoleExists {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
}

func TestRoleService_AddModule_TwiceKeepsSingleOccurrence(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	role, _ := svc.Create(context.Background(), "editor", nil)

	updated, err := svc.AddModule(context.Background(), role.ID, "reports")
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if !updated.HasModule("reports") {
		t.Fatalf("expected reports to be present")
	}

	if _, err := svc.AddModule(context.Background(), role.ID, "reports"); err != domain.ErrModuleUnchanged {
		t.Fatalf("expected ErrModuleUnchanged on repeat add, got %v", err)
	}

	final, _ := svc.Get(context.Background(), role.ID)
	count := 0
	for _, m := range final.AccessModules {
		if m == "reports" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one occurrence of reports, got %d", count)
	}
}

func TestRoleService_ReplaceModules_CollapsesDuplicates(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	role, _ := svc.Create(context.Background(), "editor", []string{"old"})

	updated, err := svc.ReplaceModules(context.Background(), role.ID, []string{"a", "a", "b"})
	if err != nil {
		t.Fatalf("ReplaceModules returned error: %v", err)
	}
	if !reflect.DeepEqual(updated.AccessModules, []string{"a", "b"}) {
		t.Fatalf("expected {a,b}, got %v", updated.AccessModules)
	}
}

func TestRoleService_RemoveModule_Missing(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	role, _ := svc.Create(context.Background(), "editor", []string{"reports"})

	if _, err := svc.RemoveModule(context.Background(), role.ID, "billing"); err != domain.ErrModuleUnchanged {
		t.Fatalf("expected ErrModuleUnchanged, got %v", err)
	}
}

func TestRoleService_Update_StripsImmutableFields(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	role, _ := svc.Create(context.Background(), "editor", nil)

	fields := map[string]any{"roleName": "viewer", "createdAt": "2000-01-01", "_id": "x"}
	updated, err := svc.Update(context.Background(), role.ID, fields)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.RoleName != "viewer" {
		t.Fatalf("expected roleName to change, got %s", updated.RoleName)
	}
	if !updated.CreatedAt.Equal(role.CreatedAt) {
		t.Fatalf("expected createdAt to be untouched")
	}
}

type updateCountingRoleRepo struct {
	*stubRoleRepo
	updateCalls int
}

func (s *updateCountingRoleRepo) Update(ctx context.Context, id string, fields map[string]any) (*domain.Role, error) {
	s.updateCalls++
	return s.stubRoleRepo.Update(ctx, id, fields)
}

func TestRoleService_Update_EmptyPatchReadsBack(t *testing.T) {
	repo := &updateCountingRoleRepo{stubRoleRepo: newStubRoleRepo()}
	svc := NewRoleService(repo, zerolog.Nop())

	role, _ := svc.Create(context.Background(), "editor", []string{"reports"})

	// A patch carrying only immutable fields must not reach the store as an
	// empty $set.
	got, err := svc.Update(context.Background(), role.ID, map[string]any{"_id": "x", "createdAt": "2000-01-01"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no store update for an empty patch, got %d", repo.updateCalls)
	}
	if got.RoleName != "editor" || !got.HasModule("reports") {
		t.Fatalf("expected role returned unchanged, got %+v", got)
	}

	if _, err := svc.Update(context.Background(), role.ID, map[string]any{}); err != nil {
		t.Fatalf("empty patch returned error: %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no store update, got %d", repo.updateCalls)
	}
}

func TestRoleService_Delete_NotFound(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	if err := svc.Delete(context.Background(), "missing"); err != domain.ErrRoleNotFound {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

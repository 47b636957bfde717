package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/accessly/rbac-service/internal/core/domain"
	"github.com/accessly/rbac-service/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	roles  *stubRoleRepo
	nextID int
}

func newStubUserRepo(roles *stubRoleRepo) *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User), roles: roles, nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (s *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("u%d", s.nextID)
	s.nextID++
	s.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (s *stubUserRepo) SearchWithRoles(_ context.Context, _ string) ([]domain.UserWithRole, error) {
	out := make([]domain.UserWithRole, 0, len(s.users))
	for _, u := range s.users {
		role, err := s.roles.FindByID(context.Background(), u.RoleID)
		if err != nil {
			continue // dangling reference drops from the join
		}
		out = append(out, domain.UserWithRole{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			RoleDetails: domain.RoleDetails{
				RoleName:      role.RoleName,
				AccessModules: role.AccessModules,
			},
		})
	}
	return out, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := cloneUser(u)
	if role, err := s.roles.FindByID(context.Background(), u.RoleID); err == nil {
		out.RoleDetails = &domain.RoleDetails{
			RoleName:      role.RoleName,
			AccessModules: role.AccessModules,
		}
	}
	return out, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepo) Update(_ context.Context, id string, fields map[string]any) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if v, ok := fields["firstName"].(string); ok {
		u.FirstName = v
	}
	if v, ok := fields["lastName"].(string); ok {
		u.LastName = v
	}
	if v, ok := fields["password"].(string); ok {
		u.PasswordHash = v
	}
	return cloneUser(u), nil
}

func (s *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubUserRepo) UpdateAll(_ context.Context, fields map[string]any) (int64, error) {
	var count int64
	for _, u := range s.users {
		if v, ok := fields["lastName"].(string); ok {
			u.LastName = v
			count++
		}
	}
	return count, nil
}

func (s *stubUserRepo) BulkUpdate(_ context.Context, patches []ports.UserPatch) (int64, error) {
	var count int64
	for _, p := range patches {
		if _, err := s.Update(context.Background(), p.UserID, p.Fields); err == nil {
			count++
		}
	}
	return count, nil
}

func (s *stubUserRepo) HasModule(_ context.Context, userID, module string) (bool, error) {
	u, ok := s.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	role, err := s.roles.FindByID(context.Background(), u.RoleID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}
	return role.HasModule(module), nil
}

func newUserFixture(t *testing.T) (*UserService, *stubUserRepo, *domain.Role) {
	t.Helper()
	roles := newStubRoleRepo()
	role, err := roles.Create(context.Background(), &domain.Role{
		RoleName:      "analyst",
		AccessModules: []string{"reports", "billing"},
		Active:        true,
	})
	if err != nil {
		t.Fatalf("failed to seed role: %v", err)
	}
	users := newStubUserRepo(roles)
	return NewUserService(users, roles, zerolog.Nop()), users, role
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	svc, repo, role := newUserFixture(t)

	user, err := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana",
		LastName:  "Lopez",
		Email:     "ana@example.com",
		Password:  "s3cret1",
		RoleID:    role.ID,
		Active:    true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	stored := repo.users[user.ID]
	if stored.PasswordHash == "s3cret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestUserService_Create_UnknownRole(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana",
		LastName:  "Lopez",
		Email:     "ana@example.com",
		Password:  "s3cret1",
		RoleID:    "missing",
	})
	if err != domain.ErrRoleNotFound {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestUserService_Update_HashesPasswordField(t *testing.T) {
	svc, repo, role := newUserFixture(t)
	user, _ := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		Password: "s3cret1", RoleID: role.ID,
	})

	if _, err := svc.Update(context.Background(), user.ID, map[string]any{"password": "newpass1"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	stored := repo.users[user.ID]
	if stored.PasswordHash == "newpass1" {
		t.Fatalf("expected updated password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass1")); err != nil {
		t.Fatalf("updated hash does not match new password: %v", err)
	}
}

type updateCountingUserRepo struct {
	*stubUserRepo
	updateCalls int
}

func (s *updateCountingUserRepo) Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	s.updateCalls++
	return s.stubUserRepo.Update(ctx, id, fields)
}

func TestUserService_Update_EmptyPatchReadsBack(t *testing.T) {
	roles := newStubRoleRepo()
	role, err := roles.Create(context.Background(), &domain.Role{RoleName: "analyst", Active: true})
	if err != nil {
		t.Fatalf("failed to seed role: %v", err)
	}
	repo := &updateCountingUserRepo{stubUserRepo: newStubUserRepo(roles)}
	svc := NewUserService(repo, roles, zerolog.Nop())

	user, _ := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		Password: "s3cret1", RoleID: role.ID,
	})

	// A patch carrying only immutable fields must not reach the store as an
	// empty $set.
	got, err := svc.Update(context.Background(), user.ID, map[string]any{"_id": "evil"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no store update for an empty patch, got %d", repo.updateCalls)
	}
	if got.Email != "ana@example.com" {
		t.Fatalf("expected user returned unchanged, got %+v", got)
	}
}

func TestUserService_CheckAccess(t *testing.T) {
	svc, _, role := newUserFixture(t)
	user, _ := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		Password: "s3cret1", RoleID: role.ID,
	})

	has, err := svc.CheckAccess(context.Background(), user.ID, "reports")
	if err != nil {
		t.Fatalf("CheckAccess returned error: %v", err)
	}
	if !has {
		t.Fatalf("expected access to reports")
	}

	has, err = svc.CheckAccess(context.Background(), user.ID, "payroll")
	if err != nil {
		t.Fatalf("CheckAccess returned error: %v", err)
	}
	if has {
		t.Fatalf("expected no access to payroll")
	}

	if _, err := svc.CheckAccess(context.Background(), "ghost", "reports"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_CheckAccess_AfterModuleRemoval(t *testing.T) {
	svc, repo, role := newUserFixture(t)
	user, _ := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		Password: "s3cret1", RoleID: role.ID,
	})

	if _, err := repo.roles.RemoveModule(context.Background(), role.ID, "reports"); err != nil {
		t.Fatalf("RemoveModule failed: %v", err)
	}

	has, err := svc.CheckAccess(context.Background(), user.ID, "reports")
	if err != nil {
		t.Fatalf("CheckAccess returned error: %v", err)
	}
	if has {
		t.Fatalf("expected access to be revoked with the module")
	}
}

func TestUserService_DanglingRoleDropsFromSearch(t *testing.T) {
	svc, repo, role := newUserFixture(t)
	user, _ := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		Password: "s3cret1", RoleID: role.ID,
	})

	if err := repo.roles.Delete(context.Background(), role.ID); err != nil {
		t.Fatalf("role delete failed: %v", err)
	}

	// getUser still succeeds on the dangling reference.
	got, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.RoleDetails != nil {
		t.Fatalf("expected no role details on dangling reference")
	}

	// ...but the joined search excludes the user.
	rows, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected dangling user to drop from join, got %d rows", len(rows))
	}
}

func TestUserService_BulkSetField(t *testing.T) {
	svc, _, role := newUserFixture(t)
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), ports.CreateUserInput{
			FirstName: "User", LastName: "Old",
			Email:    fmt.Sprintf("u%d@example.com", i),
			Password: "s3cret1", RoleID: role.ID,
		}); err != nil {
			t.Fatalf("seed user failed: %v", err)
		}
	}

	count, err := svc.BulkSetField(context.Background(), "lastName", "Smith")
	if err != nil {
		t.Fatalf("BulkSetField returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 users updated, got %d", count)
	}
}

func TestUserService_BulkApplyPatches_StripsIDs(t *testing.T) {
	svc, repo, role := newUserFixture(t)
	user, _ := svc.Create(context.Background(), ports.CreateUserInput{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		Password: "s3cret1", RoleID: role.ID,
	})

	count, err := svc.BulkApplyPatches(context.Background(), []ports.UserPatch{
		{UserID: user.ID, Fields: map[string]any{"firstName": "Anna", "_id": "evil"}},
	})
	if err != nil {
		t.Fatalf("BulkApplyPatches returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user updated, got %d", count)
	}
	if repo.users[user.ID].FirstName != "Anna" {
		t.Fatalf("expected patch to apply")
	}
}

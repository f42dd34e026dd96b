package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

func TestUserManagementRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []*domain.User{f.support, f.developer, f.manager} {
		_, err := f.userSvc.List(ctx, actor)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), actor.Role)
		_, err = f.userSvc.Create(ctx, actor, CreateUserInput{Username: "x", Password: "secret1", FullName: "X", Role: "Admin"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), actor.Role)
	}
}

func TestAdminCannotTargetSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &domain.User{Username: "root", FullName: "System Admin", Role: domain.RoleAdmin}))

	_, err := f.userSvc.UpdateRole(ctx, f.admin, "root", "Manager")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbiddenSelf))

	err = f.userSvc.Delete(ctx, f.admin, "root")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbiddenSelf))

	stored, err := f.users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestAdminManagesOtherUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &domain.User{Username: "root", FullName: "System Admin", Role: domain.RoleAdmin}))

	created, err := f.userSvc.Create(ctx, f.admin, CreateUserInput{
		Username: "vignesh", Password: "secret1", FullName: "Vignesh", Role: "support engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupportEngineer, created.Role)
	assert.Equal(t, "root", created.CreatedBy)

	_, err = f.userSvc.Create(ctx, f.admin, CreateUserInput{Username: "vignesh", Password: "secret1", FullName: "V", Role: "Developer"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUsernameTaken))

	_, err = f.userSvc.Create(ctx, f.admin, CreateUserInput{Username: "other", Password: "secret1", FullName: "O", Role: "Owner"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	updated, err := f.userSvc.UpdateRole(ctx, f.admin, "vignesh", "Developer")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, updated.Role)

	require.NoError(t, f.userSvc.ResetPassword(ctx, f.admin, "vignesh", "newpass1"))
	_, err = f.auth.Login(ctx, "vignesh", "newpass1")
	assert.NoError(t, err)

	require.NoError(t, f.userSvc.Delete(ctx, f.admin, "vignesh"))
	err = f.userSvc.Delete(ctx, f.admin, "vignesh")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.userSvc.UpdateRole(ctx, f.admin, "ghost", "Manager")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func countAdmins(t *testing.T, f *fixture) int {
	t.Helper()
	users, err := f.users.List(context.Background())
	require.NoError(t, err)
	admins := 0
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			admins++
		}
	}
	return admins
}

func seedTwoAdmins(t *testing.T, f *fixture) (*domain.User, *domain.User) {
	t.Helper()
	ctx := context.Background()
	alice := &domain.User{Username: "alice", FullName: "Alice", Role: domain.RoleAdmin}
	bob := &domain.User{Username: "bob", FullName: "Bob", Role: domain.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, alice))
	require.NoError(t, f.users.Create(ctx, bob))
	return alice, bob
}

func TestConcurrentCrossDemotionKeepsAnAdmin(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		alice, bob := seedTwoAdmins(t, f)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.userSvc.UpdateRole(context.Background(), alice, "bob", "Manager")
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.userSvc.UpdateRole(context.Background(), bob, "alice", "Manager")
		}()
		wg.Wait()

		assert.Equal(t, 1, countAdmins(t, f))
		failed := 0
		for _, err := range errs {
			if err != nil {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), err)
				failed++
			}
		}
		assert.Equal(t, 1, failed)
	}
}

func TestConcurrentCrossDeleteKeepsAnAdmin(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		alice, bob := seedTwoAdmins(t, f)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = f.userSvc.Delete(context.Background(), alice, "bob")
		}()
		go func() {
			defer wg.Done()
			_ = f.userSvc.Delete(context.Background(), bob, "alice")
		}()
		wg.Wait()

		assert.Equal(t, 1, countAdmins(t, f))
	}
}

func TestDemotedAdminLosesUserManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := seedTwoAdmins(t, f)
	require.NoError(t, f.users.Create(ctx, &domain.User{Username: "carol", FullName: "Carol", Role: domain.RoleDeveloper}))

	_, err := f.userSvc.UpdateRole(ctx, alice, "bob", "Manager")
	require.NoError(t, err)

	// bob's principal was loaded before the demotion
	_, err = f.userSvc.UpdateRole(ctx, bob, "carol", "Admin")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	err = f.userSvc.Delete(ctx, bob, "alice")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Equal(t, 1, countAdmins(t, f))
}

func TestAdminGuard(t *testing.T) {
	f := newFixture(t)
	both := []domain.User{
		{Username: "root", Role: domain.RoleAdmin},
		{Username: "other", Role: domain.RoleAdmin},
	}

	assert.NoError(t, f.userSvc.adminGuard("root", "other", true)(both))

	err := f.userSvc.adminGuard("root", "other", true)([]domain.User{{Username: "other", Role: domain.RoleAdmin}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	err = f.userSvc.adminGuard("root", "root", true)([]domain.User{{Username: "root", Role: domain.RoleAdmin}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeLastAdmin))

	assert.NoError(t, f.userSvc.adminGuard("root", "root", false)([]domain.User{{Username: "root", Role: domain.RoleAdmin}}))
}

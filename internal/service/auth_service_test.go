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

func TestRegisterBootstrapsFirstAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", FullName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.User.Role)
	assert.Equal(t, domain.SelfRegistration, first.User.CreatedBy)
	assert.NotEmpty(t, first.Token)

	second, err := f.auth.Register(ctx, RegisterInput{Username: "mallory", Password: "secret1", FullName: "Mallory", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, second.User.Role)

	stored, err := f.users.GetByUsername(ctx, "mallory")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, stored.Role)
}

func TestConcurrentRegistrationYieldsOneAdmin(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.auth.Register(context.Background(), RegisterInput{
				Username: "user_" + string(rune('a'+i)),
				Password: "secret1",
				FullName: "User",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	users, err := f.users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 8)
	admins := 0
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Username: "bad name!", Password: "secret1", FullName: "X"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidUsername))

	_, err = f.auth.Register(ctx, RegisterInput{Username: "shorty", Password: "12345", FullName: "X"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeWeakPassword))

	_, err = f.auth.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", FullName: "Alice"})
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, RegisterInput{Username: "alice", Password: "secret2", FullName: "Alice Again"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUsernameTaken))
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", FullName: "Alice"})
	require.NoError(t, err)

	session, err := f.auth.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.User.Username)

	user, err := f.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	_, err = f.auth.Login(ctx, "alice", "wrong-password")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthInvalid))
	_, err = f.auth.Login(ctx, "nobody", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthInvalid))

	_, err = f.auth.Authenticate(ctx, "garbage")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthInvalid))

	require.NoError(t, f.users.Delete(ctx, "alice", nil))
	_, err = f.auth.Authenticate(ctx, session.Token)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthInvalid))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", FullName: "Alice"})
	require.NoError(t, err)

	err = f.auth.ChangePassword(ctx, session.User, "not-it", "secret2")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthInvalid))

	err = f.auth.ChangePassword(ctx, session.User, "secret1", "123")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeWeakPassword))

	require.NoError(t, f.auth.ChangePassword(ctx, session.User, "secret1", "secret2"))
	_, err = f.auth.Login(ctx, "alice", "secret2")
	assert.NoError(t, err)
}

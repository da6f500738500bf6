package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type fakeRevoker struct {
	revoked []uuid.UUID
	err     error
}

func (f *fakeRevoker) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, userID)
	return nil
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, &fakeRevoker{})
	require.Error(t, err)

	_, err = NewService(NewRepository(dbtest.Open(t)), nil)
	require.Error(t, err)
}

func TestServiceGetScopesByRole(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "u@example.com", PasswordHash: "h", FirstName: "U", LastName: "S"})
	require.NoError(t, err)

	dto, err := svc.Get(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", dto.Email)

	_, err = svc.Get(ctx, user.ID, enums.UserRoleAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Get(ctx, uuid.New(), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceDelete(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	admin, err := repo.Create(ctx, CreateUserDTO{Email: "a@example.com", PasswordHash: "h", FirstName: "A", LastName: "D", Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	err = svc.Delete(ctx, admin.ID, enums.UserRoleUser)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, admin.ID, enums.UserRoleAdmin))

	err = svc.Delete(ctx, admin.ID, enums.UserRoleAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceDeleteRevokesSessions(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	revoker := &fakeRevoker{}
	svc, err := NewService(repo, revoker)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "gone@example.com", PasswordHash: "h", FirstName: "G", LastName: "O"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID, enums.UserRoleUser))
	assert.Equal(t, []uuid.UUID{user.ID}, revoker.revoked)
}

func TestServiceDeleteKeepsAccountWhenRevokeFails(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, &fakeRevoker{err: errors.New("redis down")})
	require.NoError(t, err)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "stay@example.com", PasswordHash: "h", FirstName: "S", LastName: "T"})
	require.NoError(t, err)

	err = svc.Delete(ctx, user.ID, enums.UserRoleUser)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = svc.Get(ctx, user.ID, enums.UserRoleUser)
	assert.NoError(t, err)
}

func TestServiceListRejectsBadCursor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.List(context.Background(), "", pagination.Params{Cursor: "not-a-cursor"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, &fakeRevoker{})
	require.NoError(t, err)
	return svc, repo
}

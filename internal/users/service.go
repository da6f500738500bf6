package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

// Service exposes the read and delete operations behind the user and admin routes.
// A non-empty role scopes the operation, so a user id asked for as an admin
// resolves to NotFound.
type Service interface {
	Get(ctx context.Context, id uuid.UUID, role enums.UserRole) (*UserDTO, error)
	List(ctx context.Context, role enums.UserRole, params pagination.Params) (*types.Page[UserDTO], error)
	Delete(ctx context.Context, id uuid.UUID, role enums.UserRole) error
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, string, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// SessionRevoker ends every session a user holds.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     repository
	sessions SessionRevoker
}

func NewService(repo repository, sessions SessionRevoker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session revoker required")
	}
	return &service{repo: repo, sessions: sessions}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, role enums.UserRole) (*UserDTO, error) {
	user, err := s.load(ctx, id, role)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, role enums.UserRole, params pagination.Params) (*types.Page[UserDTO], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, role, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return &types.Page[UserDTO]{Items: FromModels(rows), NextCursor: next}, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, role enums.UserRole) error {
	if _, err := s.load(ctx, id, role); err != nil {
		return err
	}
	// sessions go first: a failed revoke leaves the account in place to retry
	if err := s.sessions.RevokeUser(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke user sessions")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage(role))
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID, role enums.UserRole) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage(role))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if role != "" && user.Role != role {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage(role))
	}
	return user, nil
}

func notFoundMessage(role enums.UserRole) string {
	if role == enums.UserRoleAdmin {
		return "admin not found"
	}
	return "user not found"
}

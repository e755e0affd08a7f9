package services

import (
	"context"

	"github.com/agrolink/apiserver/internal/authz"
	"github.com/agrolink/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// List returns every account. Admin only.
func (s *UserService) List(ctx context.Context, principal authz.Principal) ([]types.User, error) {
	if err := authz.CanAdministrate(principal); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// AdminUpdate changes a non-admin account's name, email, or role.
// Admin accounts are protected: they can never be edited through this
// path, and no account can be promoted to admin here.
func (s *UserService) AdminUpdate(ctx context.Context, principal authz.Principal, id int, name, email string, role types.Role) (types.User, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if err := authz.CanManageUser(principal, target); err != nil {
		return types.User{}, err
	}
	if !role.Valid() || role == types.RoleAdmin {
		return types.User{}, authz.ErrForbidden
	}

	target.Name = name
	target.Email = email
	target.Role = role
	return s.repo.Update(ctx, target)
}

// AdminDelete removes a non-admin account.
func (s *UserService) AdminDelete(ctx context.Context, principal authz.Principal, id int) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanManageUser(principal, target); err != nil {
		return err
	}
	return s.repo.Delete(ctx, target.ID)
}

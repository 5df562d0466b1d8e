package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
	"github.com/computerstore/storefront-api/internal/domains/users/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo   ports.Repository
	tokens ports.TokenIssuer
}

func NewService(repo ports.Repository, tokens ports.TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a customer account. Roles are never taken from the request.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Username, input.Password)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.UpdateProfile(input.Email, input.FullName, input.Phone, input.Address); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, user)
}

func (s *Service) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.LoginResult{Token: token, User: user}, nil
}

// Authenticate verifies a bearer token and reloads the account it names.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return auth.Identity{}, mapError(err)
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		return auth.Identity{}, mapError(ports.ErrInvalidToken)
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return user.Identity(), nil
}

func (s *Service) Me(ctx context.Context, caller auth.Identity) (*domain.User, error) {
	return s.repo.GetByID(ctx, caller.UserID)
}

func (s *Service) List(ctx context.Context, caller auth.Identity) ([]*domain.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Get returns an account to its owner or to an admin.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (*domain.User, error) {
	if err := requireSelfOrAdmin(caller, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, input ports.UpdateInput) (*domain.User, error) {
	if err := requireSelfOrAdmin(caller, input.ID); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	email, fullName, phone, address := user.Email, user.FullName, user.Phone, user.Address
	if input.Email != nil {
		email = *input.Email
	}
	if input.FullName != nil {
		fullName = *input.FullName
	}
	if input.Phone != nil {
		phone = *input.Phone
	}
	if input.Address != nil {
		address = *input.Address
	}
	if err := user.UpdateProfile(email, fullName, phone, address); err != nil {
		return nil, mapError(err)
	}
	if input.Password != nil {
		if err := user.SetPassword(*input.Password); err != nil {
			return nil, mapError(err)
		}
	}
	return s.repo.Save(ctx, user)
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	if caller.UserID == id {
		return ports.ErrDeleteSelf
	}
	return s.repo.Delete(ctx, id)
}

func requireSelfOrAdmin(caller auth.Identity, id int64) error {
	if err := auth.RequireUser(caller); err != nil {
		return err
	}
	if !caller.CanAccess(id) {
		return fmt.Errorf("%w: account %d belongs to another user", auth.ErrForbidden, id)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// An existing account with that username is promoted but keeps its password.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	existing, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		if existing.Role == auth.RoleAdmin {
			return existing, nil
		}
		existing.Promote()
		return s.repo.Save(ctx, existing)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}
	user, err := domain.NewUser(username, password)
	if err != nil {
		return nil, mapError(err)
	}
	user.Promote()
	return s.repo.Save(ctx, user)
}

var _ ports.Service = (*Service)(nil)

package ports

import (
	"context"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Phone    string
	Address  string
}

// UpdateInput applies the non-nil fields to an account. The role is not editable.
type UpdateInput struct {
	ID       int64
	Password *string
	Email    *string
	FullName *string
	Phone    *string
	Address  *string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token Token
	User  *domain.User
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
	Me(ctx context.Context, caller auth.Identity) (*domain.User, error)
	List(ctx context.Context, caller auth.Identity) ([]*domain.User, error)
	Get(ctx context.Context, caller auth.Identity, id int64) (*domain.User, error)
	Update(ctx context.Context, caller auth.Identity, input UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
}

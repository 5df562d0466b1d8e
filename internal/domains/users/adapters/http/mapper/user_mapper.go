package mapper

import (
	"time"

	userdomain "github.com/computerstore/storefront-api/internal/domains/users/domain"
	userports "github.com/computerstore/storefront-api/internal/domains/users/ports"
)

// User represents the transport-level user payload. The password hash never leaves the service.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     string `json:"role"`
}

// Login is the response body of a successful login.
type Login struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Address:  user.Address,
		Role:     string(user.Role),
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

// FromLoginResult converts a login result.
func FromLoginResult(result *userports.LoginResult) Login {
	if result == nil {
		return Login{}
	}
	return Login{Token: result.Token.Value, ExpiresAt: result.Token.ExpiresAt, User: FromDomainUser(result.User)}
}

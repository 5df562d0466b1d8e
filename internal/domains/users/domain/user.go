package domain

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/computerstore/storefront-api/internal/shared/auth"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrInvalidRole   = errors.New("role must be admin or customer")
)

// HashCost is the bcrypt cost used for new password hashes.
var HashCost = bcrypt.DefaultCost

const minPasswordLength = 6

// User is a storefront account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Address      string
	Role         auth.Role
}

// NewUser builds a customer account with a hashed password.
func NewUser(username, password string) (*User, error) {
	user := &User{Role: auth.RoleCustomer}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUsername trims and validates the username.
func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	u.Username = username
	return nil
}

// SetPassword validates the plain password and stores its bcrypt hash.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// UpdateProfile applies contact fields and validates email if present.
func (u *User) UpdateProfile(email, fullName, phone, address string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	u.FullName = strings.TrimSpace(fullName)
	u.Phone = strings.TrimSpace(phone)
	u.Address = strings.TrimSpace(address)
	return nil
}

// Promote grants the admin role.
func (u *User) Promote() {
	u.Role = auth.RoleAdmin
}

// CheckPassword compares the stored hash with the supplied credentials.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// DisplayName falls back to the username when no full name is set.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Identity returns the authenticated view of the user.
func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if err := u.SetUsername(u.Username); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Clone returns a copy safe to hand out of a repository.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

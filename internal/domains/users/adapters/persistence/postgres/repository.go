package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
	"github.com/computerstore/storefront-api/internal/domains/users/ports"
	platformpostgres "github.com/computerstore/storefront-api/internal/platform/postgres"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

var _ ports.Repository = (*Repository)(nil)

const emailConstraint = "users_email_key"

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Username     string    `gorm:"column:username"`
	Email        *string   `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	FullName     string    `gorm:"column:full_name"`
	Phone        string    `gorm:"column:phone"`
	Address      string    `gorm:"column:address"`
	Role         string    `gorm:"column:role"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Save inserts a user without an id and updates it otherwise.
func (r *Repository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(user)
	db := r.db.WithContext(ctx)
	if record.ID == 0 {
		if err := db.Create(&record).Error; err != nil {
			return nil, classify(err)
		}
		return record.toDomain(), nil
	}
	result := db.Model(&userRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
		"username":      record.Username,
		"email":         record.Email,
		"password_hash": record.PasswordHash,
		"full_name":     record.FullName,
		"phone":         record.Phone,
		"address":       record.Address,
		"role":          record.Role,
		"updated_at":    gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByUsername fetches a user by username, case-insensitively.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, "LOWER(username) = LOWER(?)", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// List returns all users ordered by id.
func (r *Repository) List(ctx context.Context) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// Delete removes an account. Carts and reviews cascade; orders block the delete.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&userRecord{}, id)
	if result.Error != nil {
		if platformpostgres.IsForeignKeyViolation(result.Error) {
			return ports.ErrUserHasOrders
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func classify(err error) error {
	if !platformpostgres.IsUniqueViolation(err) {
		return err
	}
	if platformpostgres.ViolatedConstraint(err) == emailConstraint {
		return ports.ErrEmailTaken
	}
	return ports.ErrUsernameTaken
}

func toRecord(user *domain.User) userRecord {
	var email *string
	if user.Email != "" {
		e := user.Email
		email = &e
	}
	return userRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        email,
		PasswordHash: user.PasswordHash,
		FullName:     user.FullName,
		Phone:        user.Phone,
		Address:      user.Address,
		Role:         string(user.Role),
	}
}

func (r userRecord) toDomain() *domain.User {
	user := &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		Phone:        r.Phone,
		Address:      r.Address,
		Role:         auth.Role(r.Role),
	}
	if r.Email != nil {
		user.Email = *r.Email
	}
	return user
}

func toDomainList(records []userRecord) []*domain.User {
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users
}

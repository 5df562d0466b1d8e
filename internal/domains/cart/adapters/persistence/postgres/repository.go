package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/computerstore/storefront-api/internal/domains/cart/domain"
	"github.com/computerstore/storefront-api/internal/domains/cart/ports"
	platformpostgres "github.com/computerstore/storefront-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists cart items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type cartItemRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	UserID    int64     `gorm:"column:user_id"`
	ProductID int64     `gorm:"column:product_id"`
	Quantity  int       `gorm:"column:quantity"`
	AddedAt   time.Time `gorm:"column:added_at;autoCreateTime"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

func (r *Repository) List(ctx context.Context, userID int64) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []cartItemRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("added_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

func (r *Repository) Get(ctx context.Context, userID, productID int64) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record cartItemRecord
	err := r.db.WithContext(ctx).First(&record, "user_id = ? AND product_id = ?", userID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// Save upserts the item on (user_id, product_id), keeping the original added_at.
func (r *Repository) Save(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("cart item is nil")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	record := cartItemRecord{UserID: item.UserID, ProductID: item.ProductID, Quantity: item.Quantity, AddedAt: item.AddedAt}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).
		Create(&record).Error
	if platformpostgres.IsForeignKeyViolation(err) {
		return nil, ports.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, item.UserID, item.ProductID)
}

func (r *Repository) Delete(ctx context.Context, userID, productID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&cartItemRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteAllForUser(ctx context.Context, userID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&cartItemRecord{}).Error
}

// PurgeStale removes abandoned items. Use for housekeeping or cron.
func (r *Repository) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Where("added_at < ?", olderThan).Delete(&cartItemRecord{})
	return result.RowsAffected, result.Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

func (r cartItemRecord) toDomain() *domain.Item {
	return &domain.Item{
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		AddedAt:   r.AddedAt,
	}
}

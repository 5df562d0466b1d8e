package postgres

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
	platformpostgres "github.com/computerstore/storefront-api/internal/platform/postgres"
)

const stockConstraint = "products_stock_non_negative"

var (
	_ ports.UnitOfWork  = (*UnitOfWork)(nil)
	_ ports.Inventory   = (*Inventory)(nil)
	_ ports.CartCleaner = (*CartCleaner)(nil)
)

// UnitOfWork runs order workflows inside one database transaction.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Stores) error) error {
	if u == nil || u.db == nil {
		return errors.New("postgres unit of work not configured")
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, ports.Stores{
			Orders:    NewRepository(tx),
			Inventory: NewInventory(tx),
			Carts:     NewCartCleaner(tx),
		})
	})
}

// productRow is the order workflow's view of the products table.
type productRow struct {
	ID     int64           `gorm:"primaryKey;column:id"`
	Name   string          `gorm:"column:name"`
	Price  decimal.Decimal `gorm:"column:price"`
	Stock  int             `gorm:"column:stock"`
	Images pq.StringArray  `gorm:"column:images;type:text[]"`
}

func (productRow) TableName() string { return "products" }

// Inventory locks and adjusts product stock.
type Inventory struct {
	db *gorm.DB
}

func NewInventory(db *gorm.DB) *Inventory {
	return &Inventory{db: db}
}

// LockProducts takes FOR UPDATE locks in ascending id order so concurrent
// checkouts over overlapping products cannot deadlock.
func (i *Inventory) LockProducts(ctx context.Context, ids []int64) (map[int64]ports.ProductSnapshot, error) {
	out := make(map[int64]ports.ProductSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []productRow
	err := i.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		snap := ports.ProductSnapshot{ID: row.ID, Name: row.Name, Price: row.Price, Stock: row.Stock}
		if len(row.Images) > 0 {
			snap.Image = row.Images[0]
		}
		out[row.ID] = snap
	}
	return out, nil
}

// DecrementStock is a conditional update; the CHECK constraint backs it up.
func (i *Inventory) DecrementStock(ctx context.Context, productID int64, qty int) error {
	result := i.db.WithContext(ctx).
		Model(&productRow{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		if platformpostgres.IsCheckViolation(result.Error, stockConstraint) {
			return ports.ErrInsufficientStock
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrInsufficientStock
	}
	return nil
}

func (i *Inventory) IncrementStock(ctx context.Context, productID int64, qty int) error {
	return i.db.WithContext(ctx).
		Model(&productRow{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

type cartRow struct {
	ID     int64 `gorm:"primaryKey;column:id"`
	UserID int64 `gorm:"column:user_id"`
}

func (cartRow) TableName() string { return "cart_items" }

// CartCleaner deletes cart rows inside the checkout transaction.
type CartCleaner struct {
	db *gorm.DB
}

func NewCartCleaner(db *gorm.DB) *CartCleaner {
	return &CartCleaner{db: db}
}

func (c *CartCleaner) DeleteAllForUser(ctx context.Context, userID int64) error {
	return c.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&cartRow{}).Error
}

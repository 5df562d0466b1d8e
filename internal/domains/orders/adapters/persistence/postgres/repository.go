package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their lines in PostgreSQL using GORM.
// Schema is owned by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. db may be a transaction handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order header to its relational table.
type orderRecord struct {
	ID              int64           `gorm:"primaryKey;column:id"`
	UserID          int64           `gorm:"column:user_id"`
	FullName        string          `gorm:"column:full_name"`
	Phone           string          `gorm:"column:phone"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	ShippingAddress string          `gorm:"column:shipping_address"`
	PaymentMethod   string          `gorm:"column:payment_method"`
	Notes           string          `gorm:"column:notes"`
	Status          string          `gorm:"column:status"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
	Lines           []lineRecord    `gorm:"foreignKey:OrderID"`
	Payment         *paymentRecord  `gorm:"foreignKey:OrderID"`
}

func (orderRecord) TableName() string { return "orders" }

// lineRecord keeps the purchase-time snapshot of a product. ProductID is
// nulled by the schema when the product is deleted.
type lineRecord struct {
	ID           int64           `gorm:"primaryKey;column:id"`
	OrderID      int64           `gorm:"column:order_id"`
	ProductID    *int64          `gorm:"column:product_id"`
	ProductName  string          `gorm:"column:product_name"`
	ProductImage string          `gorm:"column:product_image"`
	Quantity     int             `gorm:"column:quantity"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
}

func (lineRecord) TableName() string { return "order_lines" }

type paymentRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id"`
	Method    string          `gorm:"column:payment_method"`
	Status    string          `gorm:"column:payment_status"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2)"`
	PaidAt    *time.Time      `gorm:"column:paid_at"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (paymentRecord) TableName() string { return "payments" }

// Create inserts the header and, through the associations, every line and the payment.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByID fetches an order with its lines.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate locks the header row until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, lock bool) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record orderRecord
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	if err := db.Where("order_id = ?", id).Order("id").Find(&record.Lines).Error; err != nil {
		return nil, err
	}
	var payments []paymentRecord
	if err := db.Where("order_id = ?", id).Limit(1).Find(&payments).Error; err != nil {
		return nil, err
	}
	if len(payments) > 0 {
		record.Payment = &payments[0]
	}
	return record.toDomain(), nil
}

// ListByUser returns the user's orders newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", userID) })
}

// ListAll returns every order newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *Repository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payment").
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the lines, the payment and then the header in one transaction.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&lineRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&paymentRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&orderRecord{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.getPayment(ctx, id, false)
}

// GetPaymentForUpdate locks the payment row until the surrounding transaction ends.
func (r *Repository) GetPaymentForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.getPayment(ctx, id, true)
}

func (r *Repository) getPayment(ctx context.Context, id int64, lock bool) (*domain.Payment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record paymentRecord
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPaymentNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListPayments returns every payment newest first.
func (r *Repository) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []paymentRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	payments := make([]*domain.Payment, 0, len(records))
	for i := range records {
		payments = append(payments, records[i].toDomain())
	}
	return payments, nil
}

func (r *Repository) UpdatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	result := r.db.WithContext(ctx).Model(&paymentRecord{}).Where("id = ?", payment.ID).Updates(map[string]any{
		"payment_status": string(payment.Status),
		"paid_at":        payment.PaidAt,
		"updated_at":     gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrPaymentNotFound
	}
	return r.GetPayment(ctx, payment.ID)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:              order.ID,
		UserID:          order.UserID,
		FullName:        order.FullName,
		Phone:           order.Phone,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   string(order.PaymentMethod),
		Notes:           order.Notes,
		Status:          string(order.Status),
		Lines:           make([]lineRecord, 0, len(order.Lines)),
	}
	for _, l := range order.Lines {
		line := lineRecord{
			ID:           l.ID,
			OrderID:      l.OrderID,
			ProductName:  l.ProductName,
			ProductImage: l.ProductImage,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
		}
		if l.ProductID != 0 {
			productID := l.ProductID
			line.ProductID = &productID
		}
		rec.Lines = append(rec.Lines, line)
	}
	if p := order.Payment; p != nil {
		rec.Payment = &paymentRecord{
			ID:      p.ID,
			OrderID: p.OrderID,
			Method:  string(p.Method),
			Status:  string(p.Status),
			Amount:  p.Amount,
			PaidAt:  p.PaidAt,
		}
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:              r.ID,
		UserID:          r.UserID,
		TotalAmount:     r.TotalAmount,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(r.PaymentMethod),
		Status:          domain.Status(r.Status),
		FullName:        r.FullName,
		Phone:           r.Phone,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Lines:           make([]domain.Line, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		line := domain.Line{
			ID:           l.ID,
			OrderID:      l.OrderID,
			ProductName:  l.ProductName,
			ProductImage: l.ProductImage,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
		}
		if l.ProductID != nil {
			line.ProductID = *l.ProductID
		}
		order.Lines = append(order.Lines, line)
	}
	if r.Payment != nil {
		order.Payment = r.Payment.toDomain()
	}
	return order
}

func (r paymentRecord) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:        r.ID,
		OrderID:   r.OrderID,
		Method:    domain.PaymentMethod(r.Method),
		Status:    domain.PaymentStatus(r.Status),
		Amount:    r.Amount,
		PaidAt:    r.PaidAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

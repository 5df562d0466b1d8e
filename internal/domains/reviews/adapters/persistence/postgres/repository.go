package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
	"github.com/computerstore/storefront-api/internal/domains/reviews/ports"
	platformpostgres "github.com/computerstore/storefront-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists reviews in PostgreSQL using GORM.
// Schema is owned by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type reviewRecord struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	UserID     int64     `gorm:"column:user_id"`
	ProductID  int64     `gorm:"column:product_id"`
	Rating     int       `gorm:"column:rating"`
	Comment    string    `gorm:"column:comment"`
	ReviewDate time.Time `gorm:"column:review_date;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (reviewRecord) TableName() string { return "reviews" }

// Create inserts a review. A product deleted in the meantime surfaces as ErrProductNotFound.
func (r *Repository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if review == nil {
		return nil, errors.New("review is nil")
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	record := reviewRecord{
		UserID:    review.UserID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
		Comment:   review.Comment,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if platformpostgres.IsForeignKeyViolation(err) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record reviewRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []reviewRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("review_date DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	reviews := make([]*domain.Review, 0, len(records))
	for i := range records {
		reviews = append(reviews, records[i].toDomain())
	}
	return reviews, nil
}

func (r *Repository) Update(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if review == nil {
		return nil, errors.New("review is nil")
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&reviewRecord{}).Where("id = ?", review.ID).Updates(map[string]any{
		"rating":     review.Rating,
		"comment":    review.Comment,
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, review.ID)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&reviewRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres review repository not configured")
	}
	return nil
}

func (r reviewRecord) toDomain() *domain.Review {
	return &domain.Review{
		ID:         r.ID,
		UserID:     r.UserID,
		ProductID:  r.ProductID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewDate: r.ReviewDate,
		UpdatedAt:  r.UpdatedAt,
	}
}

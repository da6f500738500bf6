package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/internal/repo"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

// Repository persists inventory items.
type Repository struct {
	repo.Base
}

// NewRepository binds an inventory repository to the provided connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository that runs on the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns one cursor page ordered by created_at, id.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.InventoryItem, string, error) {
	return repo.Page(r.DB(ctx).Model(&models.InventoryItem{}), params, func(item models.InventoryItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: item.CreatedAt, ID: item.ID}
	})
}

// Update writes the supplied column values and reports whether the row existed.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.DB(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// Decrement removes qty units only when at least qty are on hand. It reports
// false when the row is missing or short on stock; the conditional update is
// what keeps concurrent checkouts from overselling.
func (r *Repository) Decrement(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumns(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected == 1, res.Error
}

// Increment adds amount units to the item.
func (r *Repository) Increment(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	res := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected == 1, res.Error
}

// IsReferenced reports whether any order line points at the item.
func (r *Repository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Checkout{}).Where("inventory_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	return res.RowsAffected, res.Error
}

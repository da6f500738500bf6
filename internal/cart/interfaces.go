package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	MarkConsumed(ctx context.Context, ids []uuid.UUID, orderID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// InventoryReader resolves the catalog entry a cart line points at.
type InventoryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
}

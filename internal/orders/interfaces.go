package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
)

// Repository defines persistence operations for the orders and checkouts tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateCheckout(ctx context.Context, line *models.Checkout) (*models.Checkout, error)
	UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

const cartItemNotFoundMessage = "cart item not found"

// Service exposes cart operations scoped to the authenticated user.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, input AddItemInput) (*ItemDTO, error)
	List(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Remove(ctx context.Context, userID, cartItemID uuid.UUID) error
}

type service struct {
	repo      CartRepository
	inventory InventoryReader
}

// NewService builds a cart service backed by the provided repositories.
func NewService(repo CartRepository, inventory InventoryReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory reader required")
	}
	return &service{repo: repo, inventory: inventory}, nil
}

// Add validates the line against current stock before storing it. The stock
// check is advisory: checkout re-validates under the decrementing update.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddItemInput) (*ItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.InventoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory_id is required")
	}

	item, err := s.inventory.FindByID(ctx, input.InventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
				WithDetails(map[string]any{"inventory_id": input.InventoryID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
	}
	if input.Quantity > item.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"inventory_id": item.ID,
				"name":         item.Name,
				"requested":    input.Quantity,
				"available":    item.Quantity,
			})
	}

	created, err := s.repo.Create(ctx, &models.CartItem{
		UserID:      userID,
		InventoryID: item.ID,
		Quantity:    input.Quantity,
		Status:      enums.CartItemStatusActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
	}
	created.Inventory = item
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	rows, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return &CartDTO{Items: FromModels(rows)}, nil
}

func (s *service) Remove(ctx context.Context, userID, cartItemID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	item, err := s.repo.FindByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, cartItemNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}
	if item.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another user")
	}
	if item.Status != enums.CartItemStatusActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, cartItemNotFoundMessage)
	}

	affected, err := s.repo.Delete(ctx, cartItemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, cartItemNotFoundMessage)
	}
	return nil
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/internal/cart"
	"github.com/angelmondragon/pharmacy-backend/internal/inventory"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a user's cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*Result, error)
}

// ServiceParams bundles the checkout dependencies. Metrics and Logger are optional.
type ServiceParams struct {
	DB            txRunner
	Carts         cart.CartRepository
	Inventory     *inventory.Repository
	Orders        orders.Repository
	DefaultPolicy enums.MissingInventoryPolicy
	Metrics       *metrics.CheckoutMetrics
	Logger        *logger.Logger
}

type service struct {
	tx            txRunner
	carts         cart.CartRepository
	inventory     *inventory.Repository
	orders        orders.Repository
	defaultPolicy enums.MissingInventoryPolicy
	metrics       *metrics.CheckoutMetrics
	logg          *logger.Logger
	now           func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	policy := params.DefaultPolicy
	if policy == "" {
		policy = enums.MissingInventoryFail
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid default missing inventory policy %q", policy)
	}
	return &service{
		tx:            params.DB,
		carts:         params.Carts,
		inventory:     params.Inventory,
		orders:        params.Orders,
		defaultPolicy: policy,
		metrics:       params.Metrics,
		logg:          params.Logger,
		now:           time.Now,
	}, nil
}

// PlaceOrder runs the whole checkout in one transaction: any failure rolls
// back the order, its lines and every inventory decrement.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*Result, error) {
	started := s.now()
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	policy := input.MissingInventory
	if policy == "" {
		policy = s.defaultPolicy
	}
	if !policy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing_inventory must be fail or skip")
	}

	var result *Result
	units := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, units, err = s.placeOrder(ctx, tx, userID, policy)
		return err
	})
	elapsed := s.now().Sub(started)
	if err != nil {
		s.observeFailure(ctx, userID, elapsed, err)
		return nil, err
	}

	s.metrics.ObservePlaced(elapsed, units)
	for _, line := range result.Lines {
		s.metrics.IncLine(line.Outcome.String())
	}
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(s.logg.WithUserID(ctx, userID.String()), result.Order.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"lines": len(result.Order.Checkouts),
			"units": units,
			"total": result.Order.Total.StringFixed(2),
		})
		s.logg.Info(logCtx, "checkout.order_placed")
	}
	return result, nil
}

func (s *service) placeOrder(ctx context.Context, tx *gorm.DB, userID uuid.UUID, policy enums.MissingInventoryPolicy) (*Result, int, error) {
	cartRepo := s.carts.WithTx(tx)
	inventoryRepo := s.inventory.WithTx(tx)
	ordersRepo := s.orders.WithTx(tx)

	items, err := cartRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(items) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	order, err := ordersRepo.CreateOrder(ctx, &models.Order{
		UserID: userID,
		Status: enums.OrderStatusPending,
		Total:  decimal.Zero,
	})
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	lines := make([]LineResult, 0, len(items))
	consumed := make([]uuid.UUID, 0, len(items))
	total := decimal.Zero
	units := 0

	for _, item := range items {
		line := LineResult{
			CartItemID:  item.ID,
			InventoryID: item.InventoryID,
			Quantity:    item.Quantity,
		}

		decremented, err := inventoryRepo.Decrement(ctx, item.InventoryID, item.Quantity)
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement inventory")
		}
		stock, err := inventoryRepo.FindByID(ctx, item.InventoryID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
		}

		if stock == nil {
			if policy == enums.MissingInventoryFail {
				return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
					WithDetails(map[string]any{
						"inventory_id": item.InventoryID,
						"cart_item_id": item.ID,
					})
			}
			line.Outcome = enums.LineSkippedMissingInventory
			lines = append(lines, line)
			continue
		}

		if !decremented {
			line.Outcome = enums.LineRejectedInsufficientStock
			s.metrics.IncLine(line.Outcome.String())
			return nil, 0, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"inventory_id": stock.ID,
					"name":         stock.Name,
					"requested":    item.Quantity,
					"available":    stock.Quantity,
				})
		}

		unitPrice := stock.Price.Round(2)
		subTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		checkout, err := ordersRepo.CreateCheckout(ctx, &models.Checkout{
			OrderID:     order.ID,
			CartItemID:  item.ID,
			InventoryID: stock.ID,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			SubTotal:    subTotal,
		})
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create checkout line")
		}

		order.Checkouts = append(order.Checkouts, *checkout)
		checkoutID := checkout.ID
		line.CheckoutID = &checkoutID
		line.Outcome = enums.LineIncluded
		lines = append(lines, line)
		consumed = append(consumed, item.ID)
		total = total.Add(subTotal)
		units += item.Quantity
	}

	if len(consumed) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "no purchasable items").
			WithDetails(map[string]any{"lines": lines})
	}

	if err := ordersRepo.UpdateTotal(ctx, order.ID, total); err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order total")
	}
	order.Total = total

	marked, err := cartRepo.MarkConsumed(ctx, consumed, order.ID)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume cart items")
	}
	if marked != int64(len(consumed)) {
		return nil, 0, pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout")
	}

	return &Result{Order: orders.FromModel(order), Lines: lines}, units, nil
}

func (s *service) observeFailure(ctx context.Context, userID uuid.UUID, elapsed time.Duration, err error) {
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.ObserveFailed(elapsed, string(code))
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithUserID(ctx, userID.String())
	logCtx = s.logg.WithField(logCtx, "error_code", string(code))
	if pkgerrors.MetadataFor(code).HTTPStatus >= 500 {
		s.logg.Error(logCtx, "checkout.failed", err)
		return
	}
	s.logg.Warn(logCtx, "checkout.rejected")
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

const itemNotFoundMessage = "inventory item not found"

// Service manages the catalog. Mutations are admin operations; reads are open
// to every authenticated user.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, params pagination.Params) (*types.Page[ItemDTO], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Restock(ctx context.Context, id uuid.UUID, amount int) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the inventory service dependencies.
type ServiceParams struct {
	Repo   *Repository
	DB     txRunner
	Logger *logger.Logger
}

type service struct {
	repo *Repository
	db   txRunner
	logg *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: params.Repo, db: params.DB, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	item, err := s.repo.Create(ctx, &models.InventoryItem{
		Name:        name,
		Description: trimmedPtr(input.Description),
		Quantity:    input.Quantity,
		Price:       input.Price.Round(2),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inventory item")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "inventory_id", item.ID.String()), "inventory.created")
	}
	return FromModel(item), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*types.Page[ItemDTO], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}
	return &types.Page[ItemDTO]{Items: FromModels(rows), NextCursor: next}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = trimmedPtr(input.Description)
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
		}
		updates["quantity"] = *input.Quantity
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		updates["price"] = input.Price.Round(2)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *models.InventoryItem
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.Update(ctx, id, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory item")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		updated, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Restock(ctx context.Context, id uuid.UUID, amount int) (*ItemDTO, error) {
	if amount < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be at least 1")
	}

	var restocked *models.InventoryItem
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.Increment(ctx, id, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock inventory item")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		restocked, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromModel(restocked), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, id); err != nil {
			return err
		}
		referenced, err := repo.IsReferenced(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check inventory references")
		}
		if referenced {
			return pkgerrors.New(pkgerrors.CodeConflict, "inventory item is referenced by an order").
				WithDetails(map[string]any{"inventory_id": id})
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory item")
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
	}
	return item, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	return nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

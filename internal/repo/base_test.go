package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

func TestNewBaseStoresConnection(t *testing.T) {
	db := dbtest.Open(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := dbtest.Open(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseBind(t *testing.T) {
	db := dbtest.Open(t)
	base := NewBase(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		bound := base.Bind(tx)
		if bound.db != tx {
			t.Fatalf("expected bound base to use the transaction")
		}
		if base.db != db {
			t.Fatalf("expected original base to keep its connection")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if same := base.Bind(nil); same.db != db {
		t.Fatalf("expected nil tx to keep the existing connection")
	}
}

func TestPageWalksKeysetInOrder(t *testing.T) {
	db := dbtest.Open(t)
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	names := []string{"amoxicillin", "bisoprolol", "cetirizine"}
	for i, name := range names {
		item := models.InventoryItem{Name: name, Quantity: 1, Price: decimal.NewFromInt(5), CreatedAt: start.Add(time.Duration(i) * time.Minute)}
		if err := db.Create(&item).Error; err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	key := func(item models.InventoryItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: item.CreatedAt, ID: item.ID}
	}

	first, next, err := Page(db.Model(&models.InventoryItem{}), pagination.Params{Limit: 2}, key)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || first[0].Name != "amoxicillin" || next == "" {
		t.Fatalf("unexpected first page %d rows next=%q", len(first), next)
	}

	second, next, err := Page(db.Model(&models.InventoryItem{}), pagination.Params{Limit: 2, Cursor: next}, key)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 1 || second[0].Name != "cetirizine" || next != "" {
		t.Fatalf("unexpected second page %+v next=%q", second, next)
	}

	if _, _, err := Page(db.Model(&models.InventoryItem{}), pagination.Params{Cursor: "%%%"}, key); !errors.Is(err, pagination.ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

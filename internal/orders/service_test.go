package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

func TestServiceListAttachesLinesNewestFirst(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	older := seedOrder(t, repo, userID, 2)
	time.Sleep(2 * time.Millisecond)
	newer := seedOrder(t, repo, userID, 1)
	seedOrder(t, repo, uuid.New(), 1)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Len(t, list[0].Checkouts, 1)
	assert.Len(t, list[1].Checkouts, 2)
	assert.Equal(t, enums.OrderStatusPending, list[0].Status)
	assert.True(t, list[1].Total.Equal(decimal.RequireFromString("20.00")))
}

func TestServiceGetChecksOwnership(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()
	owner := uuid.New()

	order := seedOrder(t, repo, owner, 1)

	got, err := svc.Get(ctx, owner, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Checkouts, 1)
	assert.True(t, got.Checkouts[0].SubTotal.Equal(decimal.RequireFromString("10")))

	_, err = svc.Get(ctx, uuid.New(), order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Get(ctx, owner, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func seedOrder(t *testing.T, repo Repository, userID uuid.UUID, lines int) *models.Order {
	t.Helper()
	ctx := context.Background()
	order, err := repo.CreateOrder(ctx, &models.Order{UserID: userID})
	require.NoError(t, err)

	total := decimal.Zero
	price := decimal.RequireFromString("10.00")
	for i := 0; i < lines; i++ {
		_, err := repo.CreateCheckout(ctx, &models.Checkout{
			OrderID:     order.ID,
			CartItemID:  uuid.New(),
			InventoryID: uuid.New(),
			Quantity:    1,
			UnitPrice:   price,
			SubTotal:    price,
		})
		require.NoError(t, err)
		total = total.Add(price)
	}
	require.NoError(t, repo.UpdateTotal(ctx, order.ID, total))
	return order
}

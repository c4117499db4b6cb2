package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/repository"
)

var (
	productMouse = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	productNovel = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func TestOrderLifecycle(t *testing.T) {
	c := testContext()
	pool, pgContainer, queries, orderService := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(pool, pgContainer)

	userId := uuid.New()
	inserted, err := queries.InsertOrder(c, repository.InsertOrderParams{
		ID:        uuid.New(),
		UserID:    userId,
		ProductID: productNovel,
		Quantity:  2,
	})
	assert.NoError(t, err, "seeding order should not fail")
	assert.Equal(t, repository.OrderStatusProcessing, inserted.Status, "new orders start processing")

	order, err := orderService.FindOrderById(c, userId, inserted.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Paperback Novel", order.ProductName)
	assert.EqualValues(t, 2, order.Quantity)
	assert.EqualValues(t, 50000, order.TotalMinor, "total is unit price times quantity in minor units")
	assert.Equal(t, "processing", order.Status)

	order, err = orderService.UpdateStatus(c, inserted.ID, "shipped")
	assert.NoError(t, err)
	assert.Equal(t, "shipped", order.Status)

	order, err = orderService.UpdateStatus(c, inserted.ID, "delivered")
	assert.NoError(t, err)
	assert.Equal(t, "delivered", order.Status)

	_, err = orderService.UpdateStatus(c, inserted.ID, "refunded")
	assert.ErrorIs(t, err, inErrors.ErrInvalidStatus, "unknown status must be rejected")

	order, err = orderService.FindOrderById(c, userId, inserted.ID)
	assert.NoError(t, err)
	assert.Equal(t, "delivered", order.Status, "rejected update must not change the order")
}

func TestFindOrdersByUserIdScoping(t *testing.T) {
	c := testContext()
	pool, pgContainer, queries, orderService := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(pool, pgContainer)

	userId := uuid.New()
	otherId := uuid.New()
	for _, arg := range []repository.InsertOrderParams{
		{ID: uuid.New(), UserID: userId, ProductID: productMouse, Quantity: 1},
		{ID: uuid.New(), UserID: userId, ProductID: productNovel, Quantity: 3},
		{ID: uuid.New(), UserID: otherId, ProductID: productMouse, Quantity: 5},
	} {
		_, err := queries.InsertOrder(c, arg)
		assert.NoError(t, err)
	}

	orders, err := orderService.FindOrdersByUserId(c, userId)
	assert.NoError(t, err)
	assert.Len(t, orders, 2, "only the user's own orders are listed")
	for _, order := range orders {
		assert.Equal(t, userId, order.UserId)
	}

	all, err := orderService.FindAllOrders(c)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindOrderByIdNotFound(t *testing.T) {
	c := testContext()
	pool, pgContainer, queries, orderService := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(pool, pgContainer)

	userId := uuid.New()
	inserted, err := queries.InsertOrder(c, repository.InsertOrderParams{
		ID:        uuid.New(),
		UserID:    userId,
		ProductID: productMouse,
		Quantity:  1,
	})
	assert.NoError(t, err)

	_, err = orderService.FindOrderById(c, userId, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)

	// Another user cannot read someone else's order.
	_, err = orderService.FindOrderById(c, uuid.New(), inserted.ID)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)

	_, err = orderService.UpdateStatus(c, uuid.New(), "shipped")
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
}

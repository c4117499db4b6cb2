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
)

var (
	productMouse = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	productNovel = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	productShirt = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

type CartMutationTest struct {
	name               string
	setup              setupFunc
	seedPath           []string
	teardown           teardownFunc
	mutate             func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID)
	expectedQuantities map[uuid.UUID]int32
	expectedTotalMinor int64
}

func TestCartMutation(t *testing.T) {
	tests := []CartMutationTest{
		{
			name:     "given repeated add item should accumulate quantity and total",
			setup:    setup(t),
			seedPath: []string{filepath.Join("seed", "products.seed.sql")},
			teardown: teardown(t),
			mutate: func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID) {
				assert.NoError(t, svc.AddItem(c, userId, productMouse))
				assert.NoError(t, svc.AddItem(c, userId, productMouse))
				assert.NoError(t, svc.AddItem(c, userId, productNovel))
			},
			expectedQuantities: map[uuid.UUID]int32{productMouse: 2, productNovel: 1},
			expectedTotalMinor: 45000,
		},
		{
			name:     "given set quantity should overwrite existing entry",
			setup:    setup(t),
			seedPath: []string{filepath.Join("seed", "products.seed.sql")},
			teardown: teardown(t),
			mutate: func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID) {
				assert.NoError(t, svc.AddItem(c, userId, productMouse))
				assert.NoError(t, svc.SetQuantity(c, userId, productMouse, 5))
			},
			expectedQuantities: map[uuid.UUID]int32{productMouse: 5},
			expectedTotalMinor: 50000,
		},
		{
			name:     "given set quantity for product not in cart should be a no-op",
			setup:    setup(t),
			seedPath: []string{filepath.Join("seed", "products.seed.sql")},
			teardown: teardown(t),
			mutate: func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID) {
				assert.NoError(t, svc.AddItem(c, userId, productMouse))
				assert.NoError(t, svc.SetQuantity(c, userId, productNovel, 3))
			},
			expectedQuantities: map[uuid.UUID]int32{productMouse: 1},
			expectedTotalMinor: 10000,
		},
		{
			name:     "given remove item should drop the entry",
			setup:    setup(t),
			seedPath: []string{filepath.Join("seed", "products.seed.sql")},
			teardown: teardown(t),
			mutate: func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID) {
				assert.NoError(t, svc.AddItem(c, userId, productMouse))
				assert.NoError(t, svc.AddItem(c, userId, productNovel))
				assert.NoError(t, svc.RemoveItem(c, userId, productMouse))
			},
			expectedQuantities: map[uuid.UUID]int32{productNovel: 1},
			expectedTotalMinor: 25000,
		},
		{
			name:     "given remove item not in cart should be a no-op",
			setup:    setup(t),
			seedPath: []string{filepath.Join("seed", "products.seed.sql")},
			teardown: teardown(t),
			mutate: func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID) {
				assert.NoError(t, svc.AddItem(c, userId, productMouse))
				assert.NoError(t, svc.RemoveItem(c, userId, productNovel))
			},
			expectedQuantities: map[uuid.UUID]int32{productMouse: 1},
			expectedTotalMinor: 10000,
		},
		{
			name:     "given clear should empty the cart",
			setup:    setup(t),
			seedPath: []string{filepath.Join("seed", "products.seed.sql")},
			teardown: teardown(t),
			mutate: func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID) {
				assert.NoError(t, svc.AddItem(c, userId, productMouse))
				assert.NoError(t, svc.AddItem(c, userId, productNovel))
				assert.NoError(t, svc.Clear(c, userId))
			},
			expectedQuantities: map[uuid.UUID]int32{},
			expectedTotalMinor: 0,
		},
		{
			name:     "given fractional price should round subtotal to minor units",
			setup:    setup(t),
			seedPath: []string{filepath.Join("seed", "products.seed.sql")},
			teardown: teardown(t),
			mutate: func(c context.Context, t *testing.T, svc *CartService, userId uuid.UUID) {
				assert.NoError(t, svc.AddItem(c, userId, productShirt))
				assert.NoError(t, svc.SetQuantity(c, userId, productShirt, 2))
			},
			expectedQuantities: map[uuid.UUID]int32{productShirt: 2},
			expectedTotalMinor: 3998,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			c = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
				WithContext(c)
			redis, pool, pgContainer, redisContainer, _, cartService := tt.setup(c, tt.seedPath...)
			defer tt.teardown(redis, pool, pgContainer, redisContainer)

			userId := uuid.New()
			tt.mutate(c, t, cartService, userId)

			snapshot, err := cartService.Snapshot(c, userId)
			assert.NoError(t, err, "snapshot should not fail")
			assert.EqualValues(t, tt.expectedQuantities, snapshot, "quantities should match expected")

			cart, err := cartService.View(c, userId)
			assert.NoError(t, err, "view should not fail")
			assert.EqualValues(t, tt.expectedTotalMinor, cart.TotalMinor, "total should match expected")

			var subtotalSum int64
			for _, item := range cart.CartItems {
				subtotalSum += item.SubtotalMinor
			}
			assert.EqualValues(t, cart.TotalMinor, subtotalSum, "total should equal sum of subtotals")
		})
	}
}

func TestCartAddRejectsUnknownProduct(t *testing.T) {
	c := context.Background()
	c = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(c)
	redis, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redis, pool, pgContainer, redisContainer)

	userId := uuid.New()
	err := cartService.AddItem(c, userId, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound, "unknown product should be rejected")

	snapshot, err := cartService.Snapshot(c, userId)
	assert.NoError(t, err)
	assert.Empty(t, snapshot, "cart should stay empty after a rejected add")
}

func TestCartQuantityBounds(t *testing.T) {
	c := context.Background()
	c = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(c)
	redis, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redis, pool, pgContainer, redisContainer)

	userId := uuid.New()
	assert.NoError(t, cartService.AddItem(c, userId, productMouse))

	err := cartService.SetQuantity(c, userId, productMouse, 0)
	assert.ErrorIs(t, err, inErrors.ErrInvalidQuantity, "zero quantity should be rejected")

	err = cartService.SetQuantity(c, userId, productMouse, -2)
	assert.ErrorIs(t, err, inErrors.ErrInvalidQuantity, "negative quantity should be rejected")

	err = cartService.SetQuantity(c, userId, productMouse, 100)
	assert.ErrorIs(t, err, inErrors.ErrInvalidQuantity, "quantity above limit should be rejected")

	assert.NoError(t, cartService.SetQuantity(c, userId, productMouse, 99))
	err = cartService.AddItem(c, userId, productMouse)
	assert.ErrorIs(t, err, inErrors.ErrQuantityLimit, "add past the limit should be rejected")

	snapshot, err := cartService.Snapshot(c, userId)
	assert.NoError(t, err)
	assert.EqualValues(t, map[uuid.UUID]int32{productMouse: 99}, snapshot)
}

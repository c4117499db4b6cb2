package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/manifest"
	"github.com/Alturino/storefront/internal/repository"
)

var (
	productMouse = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	productNovel = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

var paymentConfig = config.Payment{
	Currency:       "INR",
	SuccessURL:     "https://storefront.test/checkout/success",
	CancelURL:      "https://storefront.test/checkout/cancel",
	TimeoutSeconds: 5,
}

func newCheckoutService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	redisClient *redis.Client,
	carts *fakeCart,
	gateway *fakeGateway,
	mailer *fakeMailer,
) *CheckoutService {
	builder := manifest.NewBuilder(queries, paymentConfig.Currency)
	return NewCheckoutService(
		pool,
		queries,
		redisClient,
		builder,
		gateway,
		carts,
		mailer,
		paymentConfig,
	)
}

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func TestCheckoutHappyPath(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	carts := &fakeCart{items: map[uuid.UUID]int32{productMouse: 2, productNovel: 1}}
	gateway := &fakeGateway{lookupState: "completed"}
	mailer := &fakeMailer{}
	svc := newCheckoutService(pool, queries, redisClient, carts, gateway, mailer)

	userId := uuid.New()
	session, err := svc.CreateSession(c, userId)
	assert.NoError(t, err, "create session should not fail")
	assert.Equal(t, "initiated", session.Status)
	assert.EqualValues(t, 45000, session.TotalMinor, "two mice and a novel should total 45000 minor units")
	assert.Equal(t, "INR", session.Currency)
	assert.Len(t, session.Lines, 2)
	assert.NotEmpty(t, session.PaymentURL, "customer must get a payment url")
	assert.EqualValues(t, 45000, gateway.lastRequest.AmountMinor, "gateway must be charged the manifest total")
	assert.Equal(t, session.Id.String(), gateway.lastRequest.Reference)

	orders, err := svc.Confirm(c, userId, session.Id, "customer@example.com")
	assert.NoError(t, err, "confirm should not fail")
	assert.Len(t, orders, 2, "one order per manifest line")
	for _, order := range orders {
		assert.Equal(t, "processing", order.Status)
		assert.Equal(t, userId, order.UserId)
	}

	assert.True(t, carts.cleared, "cart should be cleared after the orders are committed")
	assert.Equal(t, []string{"customer@example.com"}, mailer.recipients, "confirmation mail should be sent")

	exists, err := redisClient.Exists(c, tokenKey(userId)).Result()
	assert.NoError(t, err)
	assert.EqualValues(t, 0, exists, "checkout token should be released")

	persisted, err := svc.FindSessionById(c, userId, session.Id)
	assert.NoError(t, err)
	assert.Equal(t, "completed", persisted.Status)

	stored, err := queries.FindOrdersByUserId(c, userId)
	assert.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCheckoutDuplicateConfirm(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	carts := &fakeCart{items: map[uuid.UUID]int32{productMouse: 1}}
	gateway := &fakeGateway{lookupState: "completed"}
	svc := newCheckoutService(pool, queries, redisClient, carts, gateway, &fakeMailer{})

	userId := uuid.New()
	session, err := svc.CreateSession(c, userId)
	assert.NoError(t, err)

	_, err = svc.Confirm(c, userId, session.Id, "")
	assert.NoError(t, err, "first confirm should succeed")

	_, err = svc.Confirm(c, userId, session.Id, "")
	assert.ErrorIs(t, err, inErrors.ErrCheckoutConflict, "second confirm should conflict")

	stored, err := queries.FindOrdersByUserId(c, userId)
	assert.NoError(t, err)
	assert.Len(t, stored, 1, "orders must not be committed twice")
}

func TestCheckoutUnpaidRejected(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	carts := &fakeCart{items: map[uuid.UUID]int32{productMouse: 1}}
	gateway := &fakeGateway{lookupState: "pending"}
	svc := newCheckoutService(pool, queries, redisClient, carts, gateway, &fakeMailer{})

	userId := uuid.New()
	session, err := svc.CreateSession(c, userId)
	assert.NoError(t, err)

	_, err = svc.Confirm(c, userId, session.Id, "")
	assert.ErrorIs(t, err, inErrors.ErrPaymentNotCompleted, "pending payment must not commit orders")

	assert.False(t, carts.cleared, "cart must survive a failed confirmation")

	persisted, err := svc.FindSessionById(c, userId, session.Id)
	assert.NoError(t, err)
	assert.Equal(t, "initiated", persisted.Status, "session should stay open for a retry")

	stored, err := queries.FindOrdersByUserId(c, userId)
	assert.NoError(t, err)
	assert.Empty(t, stored)

	// The payment eventually settles and the same session confirms fine.
	gateway.lookupState = "completed"
	orders, err := svc.Confirm(c, userId, session.Id, "")
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	carts := &fakeCart{items: map[uuid.UUID]int32{}}
	svc := newCheckoutService(pool, queries, redisClient, carts, &fakeGateway{}, &fakeMailer{})

	userId := uuid.New()
	_, err := svc.CreateSession(c, userId)
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)

	exists, err := redisClient.Exists(c, tokenKey(userId)).Result()
	assert.NoError(t, err)
	assert.EqualValues(t, 0, exists, "token should be released after a rejected checkout")
}

func TestCheckoutOverlapRejected(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	carts := &fakeCart{items: map[uuid.UUID]int32{productMouse: 1}}
	gateway := &fakeGateway{lookupState: "completed"}
	svc := newCheckoutService(pool, queries, redisClient, carts, gateway, &fakeMailer{})

	userId := uuid.New()
	session, err := svc.CreateSession(c, userId)
	assert.NoError(t, err)

	_, err = svc.CreateSession(c, userId)
	assert.ErrorIs(t, err, inErrors.ErrCheckoutInProgress, "overlapping checkout should be rejected")

	// Another user is unaffected.
	otherCarts := &fakeCart{items: map[uuid.UUID]int32{productNovel: 1}}
	otherSvc := newCheckoutService(pool, queries, redisClient, otherCarts, gateway, &fakeMailer{})
	_, err = otherSvc.CreateSession(c, uuid.New())
	assert.NoError(t, err, "token is per user")

	_, err = svc.Confirm(c, userId, session.Id, "")
	assert.NoError(t, err)
}

func TestCheckoutCancel(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	carts := &fakeCart{items: map[uuid.UUID]int32{productMouse: 1}}
	gateway := &fakeGateway{lookupState: "completed"}
	svc := newCheckoutService(pool, queries, redisClient, carts, gateway, &fakeMailer{})

	userId := uuid.New()
	session, err := svc.CreateSession(c, userId)
	assert.NoError(t, err)

	cancelled, err := svc.Cancel(c, userId, session.Id)
	assert.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.False(t, carts.cleared, "cancelling must keep the cart for a retry")

	exists, err := redisClient.Exists(c, tokenKey(userId)).Result()
	assert.NoError(t, err)
	assert.EqualValues(t, 0, exists, "token should be released after cancel")

	_, err = svc.Confirm(c, userId, session.Id, "")
	assert.ErrorIs(t, err, inErrors.ErrCheckoutConflict, "cancelled session must not confirm")

	stored, err := queries.FindOrdersByUserId(c, userId)
	assert.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCheckoutGatewayFailure(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries := setup(t)(
		c,
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	carts := &fakeCart{items: map[uuid.UUID]int32{productMouse: 1}}
	gateway := &fakeGateway{createErr: inErrors.ErrPaymentGateway, lookupState: "completed"}
	svc := newCheckoutService(pool, queries, redisClient, carts, gateway, &fakeMailer{})

	userId := uuid.New()
	session, err := svc.CreateSession(c, userId)
	assert.ErrorIs(t, err, inErrors.ErrPaymentGateway)
	assert.Empty(t, session.Id)

	exists, err := redisClient.Exists(c, tokenKey(userId)).Result()
	assert.NoError(t, err)
	assert.EqualValues(t, 0, exists, "token should be released after a gateway failure")

	// The customer can immediately retry once the gateway recovers.
	gateway.createErr = nil
	retried, err := svc.CreateSession(c, userId)
	assert.NoError(t, err)
	assert.Equal(t, "initiated", retried.Status)
}

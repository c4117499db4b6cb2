package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/checkout/internal/controller"
	"github.com/Alturino/storefront/checkout/internal/service"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/manifest"
	"github.com/Alturino/storefront/internal/payment"
	"github.com/Alturino/storefront/internal/repository"
)

// AttachCheckoutService wires the checkout routes onto the router. The
// carts argument is satisfied by the cart service.
func AttachCheckoutService(
	c context.Context,
	router *mux.Router,
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	builder manifest.Builder,
	gateway payment.Gateway,
	carts service.CartStore,
	mailer service.MailSender,
	cfg config.Payment,
) *service.CheckoutService {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AttachCheckoutService").
		Str(log.KeyProcess, "initializing checkout service").
		Logger()

	logger.Info().Msg("initializing checkout service")
	checkoutService := service.NewCheckoutService(
		pool,
		queries,
		cache,
		builder,
		gateway,
		carts,
		mailer,
		cfg,
	)
	controller.AttachCheckoutController(router, checkoutService)
	logger.Info().Msg("initialized checkout service")

	return checkoutService
}

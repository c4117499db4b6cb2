package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/controller"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/manifest"
	"github.com/Alturino/storefront/internal/repository"
)

// AttachCartService wires the cart routes onto the router and returns the
// service so the checkout flow can snapshot and clear carts.
func AttachCartService(
	c context.Context,
	router *mux.Router,
	queries *repository.Queries,
	cache *redis.Client,
	builder manifest.Builder,
) *service.CartService {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AttachCartService").
		Str(log.KeyProcess, "initializing cart service").
		Logger()

	logger.Info().Msg("initializing cart service")
	cartService := service.NewCartService(queries, cache, builder)
	controller.AttachCartController(router, cartService)
	logger.Info().Msg("initialized cart service")

	return cartService
}
